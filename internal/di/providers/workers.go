package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/service"
	"github.com/bookreaderapp/bookreader-core/internal/watcher"
)

// FileWatcherHandle wraps the audio root watcher and its janitor with
// shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the audio root watcher. Removal events feed
// the catalog janitor, which also sweeps stale pending entries.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	catHandle := do.MustInvoke[*CatalogHandle](i)

	w, err := watcher.New(log, watcher.Options{SettleDelay: cfg.Watcher.SettleDelay})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Storage.AudioRoot); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	janitor := service.NewJanitor(catHandle.Catalog, w.Events(), cfg.Storage.AudioRoot, log).
		WithSweep(cfg.Watcher.SweepInterval, cfg.Watcher.PendingMaxAge)

	go func() {
		if err := janitor.Run(ctx); err != nil && err != context.Canceled {
			log.Error("Catalog janitor error", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case err := <-w.Errors():
				log.Warn("file watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("File watcher started", "audio_root", cfg.Storage.AudioRoot)

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
