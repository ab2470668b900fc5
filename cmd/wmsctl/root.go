package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wmsadmin/infrastructure/config"
	"wmsadmin/infrastructure/sqlite"
)

type globalOptions struct {
	DBPath        string
	MigrationsDir string
	Embedded      bool
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "wmsctl",
		Short:         "Maintenance tasks for the wmsadmin database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "sqlite file (default SQLITE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.MigrationsDir, "migrations", "", "migrations dir (default MIGRATIONS_DIR)")
	cmd.PersistentFlags().BoolVar(&opts.Embedded, "embedded-migrations", false, "apply the migrations compiled into the binary")

	cmd.AddCommand(newSeedUserCmd(&opts))
	cmd.AddCommand(newMigrateCmd(&opts))
	cmd.AddCommand(newImportCmd(&opts))
	return cmd
}

func Execute() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// resolve fills unset options from the environment.
func (o *globalOptions) resolve() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(o.DBPath) == "" {
		o.DBPath = cfg.SQLitePath
	}
	if o.Embedded {
		o.MigrationsDir = ""
	} else if strings.TrimSpace(o.MigrationsDir) == "" {
		o.MigrationsDir = cfg.MigrationsDir
		if st, err := os.Stat(o.MigrationsDir); err != nil || !st.IsDir() {
			o.MigrationsDir = ""
		}
	}
	return cfg, nil
}

// openDB opens the database and brings its schema up to date.
func (o *globalOptions) openDB(ctx context.Context) (*sqlite.DB, config.Config, error) {
	cfg, err := o.resolve()
	if err != nil {
		return nil, cfg, err
	}
	db, err := sqlite.OpenDB(o.DBPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open db: %w", err)
	}
	if err := sqlite.ApplyMigrations(ctx, db, o.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, cfg, fmt.Errorf("apply migrations: %w", err)
	}
	return db, cfg, nil
}
