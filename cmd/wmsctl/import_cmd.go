package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wmsadmin/frontend/dataimport"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/config"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

type importOptions struct {
	Target string
	DryRun bool
	Force  bool
}

func newImportCmd(global *globalOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import --target <id> <file>",
		Short: "Run one csv, tsv, txt or xlsx file through the import pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Target == "" {
				return errors.New("--target is required")
			}
			if _, err := importer.Lookup(opts.Target); err != nil {
				return err
			}
			db, cfg, err := global.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			client, closeBackend, err := cliBackend(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			defer closeBackend()

			svc := &dataimport.Service{
				DB:        db,
				Backend:   client,
				Audit:     audit.NewService(),
				BatchSize: cfg.ImportBatchSize,
				Logger:    slog.Default(),
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), svc, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "import target id, e.g. products")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "parse and check only")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "upload even if the same file was imported before")
	return cmd
}

func cliBackend(ctx context.Context, cfg config.Config, db *sqlite.DB) (backend.Client, func(), error) {
	if cfg.Backend == config.BackendPostgres {
		pg, closeFn, err := backend.NewPostgres(ctx, cfg.PostgresDSN, nil)
		if err != nil {
			return nil, nil, err
		}
		return pg, closeFn, nil
	}
	return backend.NewSQLite(db, nil), func() {}, nil
}

func runImport(ctx context.Context, out io.Writer, svc *dataimport.Service, opts importOptions, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	text, err := importer.ReadFile(filepath.Base(path), f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sess, err := svc.Prepare(ctx, opts.Target, text, filepath.Base(path))
	if err != nil {
		return err
	}
	counts := sess.CountByStatus()
	fmt.Fprintf(out, "%s: %d rows, %d new, %d existing\n",
		sess.Target.ID, len(sess.Rows), counts[importer.StatusNew], counts[importer.StatusExisting])
	if opts.DryRun {
		return nil
	}

	if !opts.Force {
		done, err := svc.AlreadyLoaded(ctx, sess.Target.ID, sess.InputHash)
		if err != nil {
			return err
		}
		if done {
			fmt.Fprintln(out, "already imported; use --force to upload again")
			return nil
		}
	}

	res, err := svc.Load(ctx, sess, nil, dataimport.SourceCLI)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message)
	if !res.Success {
		return errors.New("import failed")
	}
	return nil
}
