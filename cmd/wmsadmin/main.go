package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"wmsadmin/frontend/dataimport"
	"wmsadmin/frontend/login"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/cache"
	"wmsadmin/infrastructure/config"
	httpserver "wmsadmin/infrastructure/http"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/metrics"
	"wmsadmin/infrastructure/rbac"
	"wmsadmin/infrastructure/realtime"
	"wmsadmin/infrastructure/session"
	"wmsadmin/infrastructure/sqlite"
	"wmsadmin/infrastructure/watcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("wmsadmin stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		return err
	}

	session.SecureCookies = cfg.SecureCookies

	hub := realtime.NewHub()
	client, closeBackend, err := openBackend(ctx, cfg, db, hub)
	if err != nil {
		return err
	}
	defer closeBackend()

	var importMetrics *metrics.Import
	var recorder importer.Recorder
	if cfg.MetricsEnabled {
		importMetrics = metrics.New()
		recorder = importMetrics
	}

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()
	tableCache := cache.NewTableCache()
	importSessions := cache.NewImportSessionCache(cfg.SessionTTL)

	importSvc := &dataimport.Service{
		DB:        db,
		Backend:   client,
		Audit:     auditSvc,
		Metrics:   recorder,
		BatchSize: cfg.ImportBatchSize,
		Logger:    logger,
	}

	poller, err := realtime.NewPoller(cfg.PollInterval, func() {
		tableCache.Invalidate(cache.Invalidation{Reason: "poll"})
		if n := importSessions.Sweep(); n > 0 {
			logger.Debug("expired import sessions swept", slog.Int("count", n))
		}
		if n := sessionCache.SweepExpired(); n > 0 {
			logger.Debug("expired login sessions evicted", slog.Int("count", n))
		}
		if n, err := login.DeleteExpiredSessions(ctx, db); err != nil {
			logger.Error("delete expired sessions", slog.Any("err", err))
		} else if n > 0 {
			logger.Debug("expired login sessions deleted", slog.Int64("count", n))
		}
	})
	if err != nil {
		return err
	}

	server := httpserver.NewServer(cfg.Addr, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, httpserver.ImportDeps{
		Backend:          client,
		TableCache:       tableCache,
		ImportSessions:   importSessions,
		Importer:         importSvc,
		Metrics:          importMetrics,
		DefaultBatchSize: cfg.ImportBatchSize,
	})

	g, gctx := errgroup.WithContext(ctx)

	events, cancelEvents := hub.Subscribe(realtime.AllTables, 256)
	defer cancelEvents()
	g.Go(func() error {
		tableCache.Listen(gctx, events)
		return nil
	})
	g.Go(func() error { return poller.Run(gctx) })

	if cfg.RedisURL != "" {
		rdb, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		bridge := realtime.NewRedisBridge(rdb, hub, logger)
		g.Go(func() error { return bridge.Run(gctx) })
		logger.Info("redis change bridge enabled")
	}

	if cfg.ImportDropDir != "" {
		w := &watcher.Watcher{Dir: cfg.ImportDropDir, Pipeline: importSvc, Logger: logger}
		g.Go(func() error { return w.Run(gctx) })
		logger.Info("watching drop folder", slog.String("dir", cfg.ImportDropDir))
	}

	if err := server.Start(); err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	logger.Info("wmsadmin listening",
		slog.String("addr", cfg.Addr),
		slog.String("backend", cfg.Backend),
		slog.Duration("poll_interval", poller.Interval()))

	g.Go(func() error {
		<-gctx.Done()
		if err := server.Stop(); err != nil {
			logger.Error("graceful shutdown error", slog.Any("err", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openBackend returns the relational client the import targets live in.
func openBackend(ctx context.Context, cfg config.Config, db *sqlite.DB, hub *realtime.Hub) (backend.Client, func(), error) {
	if cfg.Backend == config.BackendPostgres {
		pg, closeFn, err := backend.NewPostgres(ctx, cfg.PostgresDSN, hub)
		if err != nil {
			return nil, nil, err
		}
		return pg, closeFn, nil
	}
	return backend.NewSQLite(db, hub), func() {}, nil
}
