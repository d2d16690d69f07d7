package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/service"
)

// ProvideLocator provides the audio file resolution service.
func ProvideLocator(i do.Injector) (*locator.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	catHandle := do.MustInvoke[*CatalogHandle](i)

	return locator.New(catHandle.Catalog, cfg.Storage.AudioRoot, cfg.Storage.LegacyRoot, log), nil
}

// ProvideLibrary provides the repository facade.
func ProvideLibrary(i do.Injector) (*service.Library, error) {
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	loc := do.MustInvoke[*locator.Service](i)

	return service.NewLibrary(storeHandle.Store, loc, log), nil
}

// TrackerHandle wraps the position tracker with shutdown capability.
// Shutdown drains in-flight detached checkpoints before the store closes.
type TrackerHandle struct {
	*service.Tracker
}

// Shutdown implements do.Shutdownable.
func (h *TrackerHandle) Shutdown() error {
	return h.Close()
}

// ProvideTracker provides the playback position tracker.
func ProvideTracker(i do.Injector) (*TrackerHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return &TrackerHandle{Tracker: service.NewTracker(storeHandle.Store, log)}, nil
}
