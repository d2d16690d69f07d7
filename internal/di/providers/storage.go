package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/store/sqlite"
)

// StoreHandle wraps the library store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the library snapshot store. The snapshot must
// already exist and carry the SQLite magic; openers do not create it.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	st, err := sqlite.OpenSnapshot(cfg.Storage.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	log.Info("Library snapshot opened", "path", cfg.Storage.DatabasePath)

	return &StoreHandle{Store: st}, nil
}

// CatalogHandle wraps the media catalog with shutdown capability.
type CatalogHandle struct {
	*catalog.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the media catalog index. An unset catalog path
// opens an in-memory index, matching hosts without persistent catalogs.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.Storage.CatalogPath == "" {
		cat, err = catalog.OpenInMemory(log)
	} else {
		cat, err = catalog.Open(cfg.Storage.CatalogPath, log)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Media catalog opened", "path", cfg.Storage.CatalogPath)

	return &CatalogHandle{Catalog: cat}, nil
}
