package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gudangmitra/gudang-backend/internal/identity"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/migrate"
	"github.com/gudangmitra/gudang-backend/pkg/security"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate|seed")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migration directory for create and validate")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// create and validate only touch the filesystem
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})
	sqlite := cfg.FeatureFlags.UseSQLite
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"sqlite": sqlite,
	})

	dbClient, err := db.New(ctx, cfg.DB, sqlite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	switch opts.cmd {
	case "up":
		applied, err := migrate.UpEmbedded(ctx, sqlDB, sqlite)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrate.up_complete")
		return seedAdmin(ctx, cfg, logg, dbClient)
	case "seed":
		return seedAdmin(ctx, cfg, logg, dbClient)
	case "down":
		return migrate.Down(ctx, sqlDB, sqlite)
	case "status":
		lines, err := migrate.Status(ctx, sqlDB, sqlite)
		if err != nil {
			return err
		}
		for _, line := range lines {
			state := "pending"
			if line.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %d %s\n", state, line.Version, line.Path)
		}
		return nil
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, sqlite, opts.version)
	}
	return fmt.Errorf("unknown command %q", opts.cmd)
}

// seedAdmin creates the administrator addressed by legacy user id 1 when seed
// credentials are configured.
func seedAdmin(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		logg.Info(ctx, "migrate.seed_skipped")
		return nil
	}
	created, err := users.SeedAdmin(ctx, users.NewRepository(dbClient.DB()), security.NewHasher(cfg.Password), users.SeedAdminInput{
		ID:       identity.SeedAdminID,
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logg.Info(logg.WithField(ctx, "created", created), "migrate.seed_complete")
	return nil
}
