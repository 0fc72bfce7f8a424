package migrate

import (
	"context"
	"fmt"

	"github.com/lynk-ai/lynk-backend/pkg/config"
	"github.com/lynk-ai/lynk-backend/pkg/db"
	"github.com/lynk-ai/lynk-backend/pkg/logger"
)

// MaybeRun applies the embedded migrations on boot in dev, or anywhere
// LYNK_AUTO_MIGRATE is set.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.AutoMigrate && !cfg.App.IsDev() {
		return nil
	}

	if err := ValidateFS(Embedded, embeddedDir); err != nil {
		return fmt.Errorf("validating embedded migrations: %w", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	if cfg.App.IsProd() {
		logg.Warn(ctx, "auto-migrate enabled in production")
	}
	logg.Info(ctx, "running goose migrations on boot")

	if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
