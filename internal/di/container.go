// Package di provides dependency injection configuration for the player core.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/di/providers"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Resolution layer
	do.Provide(injector, providers.ProvideLocator)

	// Playback services
	do.Provide(injector, providers.ProvideLibrary)
	do.Provide(injector, providers.ProvideTracker)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	return injector
}

// Bootstrap initializes all services and returns once everything is up.
// This triggers lazy initialization in dependency order.
func Bootstrap(injector *do.RootScope) error {
	cfg := do.MustInvoke[*config.Config](injector)

	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*locator.Service](injector)
	_ = do.MustInvoke[*service.Library](injector)
	_ = do.MustInvoke[*providers.TrackerHandle](injector)

	if cfg.Watcher.Enabled {
		_ = do.MustInvoke[*providers.FileWatcherHandle](injector)
	}

	return nil
}
