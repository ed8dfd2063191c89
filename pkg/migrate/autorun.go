package migrate

import (
	"context"
	"fmt"

	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite mode always migrates since the file is local.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	useSQLite := cfg.FeatureFlags.UseSQLite
	if !useSQLite && (!cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "sqlite": useSQLite})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	applied, err := UpEmbedded(ctx, sqlDB, useSQLite)
	if err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	ctx = logg.WithField(ctx, "applied", applied)
	logg.Info(ctx, "Goose migrations completed")
	return nil
}
