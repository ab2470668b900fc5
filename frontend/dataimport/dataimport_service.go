package dataimport

import (
	"context"
	"log/slog"

	"wmsadmin/frontend/settings"
	"wmsadmin/infrastructure/audit"
	"wmsadmin/infrastructure/backend"
	"wmsadmin/infrastructure/importer"
	"wmsadmin/infrastructure/sqlite"
)

const (
	SourcePaste   = "paste"
	SourceFile    = "file"
	SourceDropDir = "dropdir"
	SourceCLI     = "cli"
)

// Service runs the import pipeline against the configured backend and keeps
// the run history in sqlite.
type Service struct {
	DB        *sqlite.DB
	Backend   backend.Client
	Audit     *audit.Service
	Metrics   importer.Recorder
	BatchSize int
	Logger    *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

type tuning struct {
	batchSize int
	fallback  importer.DedupFallbackPolicy
}

func (s *Service) tuningFor(ctx context.Context, targetID string) tuning {
	t := tuning{batchSize: s.BatchSize, fallback: importer.FallbackAssumeNew}
	setting, ok, err := settings.LoadImportSetting(ctx, s.DB, targetID)
	if err != nil {
		s.logger().Warn("load import setting failed; using defaults", slog.String("target", targetID), slog.Any("err", err))
		return t
	}
	if ok {
		t.batchSize = setting.BatchSize
		t.fallback = importer.ParseFallbackPolicy(setting.FallbackPolicy)
	}
	return t
}

// Prepare parses text for targetID and tags every row against the backend.
func (s *Service) Prepare(ctx context.Context, targetID, text, sourceName string) (*importer.Session, error) {
	sess, err := importer.NewSession(targetID, text, sourceName)
	if err != nil {
		return nil, err
	}
	checker := importer.Checker{
		Backend:  s.Backend,
		Fallback: s.tuningFor(ctx, targetID).fallback,
		Logger:   s.logger(),
	}
	// A failed existence check is already resolved by the fallback policy.
	_ = checker.Check(ctx, sess)
	return sess, nil
}

// Load uploads the new rows of sess and records the run.
func (s *Service) Load(ctx context.Context, sess *importer.Session, userID *int64, source string) (importer.LoadResult, error) {
	uploader := importer.Uploader{
		Backend:   s.Backend,
		BatchSize: s.tuningFor(ctx, sess.Target.ID).batchSize,
		Metrics:   s.Metrics,
		Logger:    s.logger(),
	}
	res := uploader.Upload(ctx, sess)
	if _, err := RecordRun(ctx, s.DB, s.Audit, userID, source, sess, res); err != nil {
		return res, err
	}
	s.logger().Info("import finished",
		slog.String("target", sess.Target.ID),
		slog.String("source", source),
		slog.Int("inserted", res.Inserted),
		slog.Int("skipped", res.Skipped),
		slog.Int("errors", res.Errors))
	return res, nil
}

// Run parses, checks and uploads in one call.
func (s *Service) Run(ctx context.Context, targetID, text, sourceName, source string) (importer.LoadResult, error) {
	sess, err := s.Prepare(ctx, targetID, text, sourceName)
	if err != nil {
		return importer.LoadResult{}, err
	}
	return s.Load(ctx, sess, nil, source)
}

func (s *Service) AlreadyLoaded(ctx context.Context, targetID, hash string) (bool, error) {
	return HasSuccessfulRun(ctx, s.DB, targetID, hash)
}
