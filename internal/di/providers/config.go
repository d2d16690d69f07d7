// Package providers contains dependency injection providers for the player core.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BookReader core",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database_path", cfg.Storage.DatabasePath,
		"audio_root", cfg.Storage.AudioRoot,
	)

	return log, nil
}
