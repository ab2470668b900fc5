// Package watcher imports files dropped into a directory.
//
// A file named <target>__<anything>.<csv|tsv|txt|xlsx> is imported into
// <target> once writes to it settle, then moved to processed/ or failed/.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wmsadmin/infrastructure/importer"
)

const (
	ProcessedDir = "processed"
	FailedDir    = "failed"

	DefaultDebounce = 500 * time.Millisecond
)

// Pipeline runs one import end to end.
type Pipeline interface {
	AlreadyLoaded(ctx context.Context, targetID, hash string) (bool, error)
	Run(ctx context.Context, targetID, text, sourceName, source string) (importer.LoadResult, error)
}

type Watcher struct {
	Dir      string
	Pipeline Pipeline
	Debounce time.Duration
	Logger   *slog.Logger

	mu sync.Mutex
}

// Outcome is what happened to one dropped file.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeLoaded    Outcome = "loaded"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// ParseDropName extracts the target id from a dropped file name.
func ParseDropName(name string) (string, bool) {
	base := filepath.Base(name)
	if !importer.SupportedExtension(base) {
		return "", false
	}
	target, _, ok := strings.Cut(base, "__")
	if !ok || target == "" {
		return "", false
	}
	if _, err := importer.Lookup(target); err != nil {
		return "", false
	}
	return target, true
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

// Run processes files already waiting in Dir, then watches it until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	if strings.TrimSpace(w.Dir) == "" {
		return errors.New("watcher: directory is required")
	}
	for _, sub := range []string{"", ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.Dir, sub), 0o755); err != nil {
			return fmt.Errorf("watcher: create %s: %w", sub, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.Dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.Dir, err)
	}
	w.logger().Info("drop folder watcher started", slog.String("dir", w.Dir))

	if err := w.ScanExisting(ctx); err != nil {
		w.logger().Error("drop folder scan failed", slog.Any("err", err))
	}

	pending := newPendingFiles(w.debounce())
	defer pending.stopAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-pending.fired:
			pending.forget(f)
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := ParseDropName(event.Name); !ok {
				continue
			}
			path := event.Name
			pending.schedule(ctx, path, func() {
				if _, err := w.ProcessFile(ctx, path); err != nil {
					w.logger().Error("drop folder import failed", slog.String("file", path), slog.Any("err", err))
				}
			})
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger().Error("drop folder watcher error", slog.Any("err", err))
		}
	}
}

// ScanExisting processes every matching file already in Dir.
func (w *Watcher) ScanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := ParseDropName(e.Name()); !ok {
			continue
		}
		if _, err := w.ProcessFile(ctx, filepath.Join(w.Dir, e.Name())); err != nil {
			w.logger().Error("drop folder import failed", slog.String("file", e.Name()), slog.Any("err", err))
		}
	}
	return nil
}

// ProcessFile imports one file and moves it out of the drop folder.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := filepath.Base(path)
	target, ok := ParseDropName(name)
	if !ok {
		return OutcomeIgnored, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		// Already handled by an earlier event.
		return OutcomeIgnored, nil
	}
	if err != nil {
		return OutcomeFailed, err
	}
	text, err := importer.ReadFile(name, f)
	f.Close()
	if err != nil {
		return OutcomeFailed, w.moveTo(path, FailedDir, err)
	}

	loaded, err := w.Pipeline.AlreadyLoaded(ctx, target, importer.Fingerprint(text))
	if err != nil {
		return OutcomeFailed, err
	}
	if loaded {
		w.logger().Info("drop folder file already imported", slog.String("file", name), slog.String("target", target))
		return OutcomeDuplicate, w.moveTo(path, ProcessedDir, nil)
	}

	res, err := w.Pipeline.Run(ctx, target, text, name, "dropdir")
	if err != nil {
		return OutcomeFailed, w.moveTo(path, FailedDir, err)
	}
	if !res.Success {
		return OutcomeFailed, w.moveTo(path, FailedDir, errors.New(res.Message))
	}
	w.logger().Info("drop folder file imported", slog.String("file", name), slog.String("target", target), slog.String("result", res.Message))
	return OutcomeLoaded, w.moveTo(path, ProcessedDir, nil)
}

// moveTo relocates path into sub and returns cause, or the rename error.
func (w *Watcher) moveTo(path, sub string, cause error) error {
	dest := filepath.Join(w.Dir, sub, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return errors.Join(cause, fmt.Errorf("move to %s: %w", sub, err))
	}
	return cause
}

type firedFile struct {
	path string
	seq  uint64
}

type pendingTimer struct {
	timer *time.Timer
	seq   uint64
}

// pendingFiles debounces events per path. It is owned by the Run loop; only
// the fired channel is touched from timer goroutines.
type pendingFiles struct {
	delay  time.Duration
	seq    uint64
	timers map[string]pendingTimer
	fired  chan firedFile
}

func newPendingFiles(delay time.Duration) *pendingFiles {
	return &pendingFiles{
		delay:  delay,
		timers: make(map[string]pendingTimer),
		fired:  make(chan firedFile),
	}
}

// schedule restarts the quiet period of path. fn runs once it elapses, then
// the timer reports back on fired so the loop can forget it.
func (p *pendingFiles) schedule(ctx context.Context, path string, fn func()) {
	if t, ok := p.timers[path]; ok {
		t.timer.Stop()
	}
	p.seq++
	seq := p.seq
	t := time.AfterFunc(p.delay, func() {
		fn()
		select {
		case p.fired <- firedFile{path: path, seq: seq}:
		case <-ctx.Done():
		}
	})
	p.timers[path] = pendingTimer{timer: t, seq: seq}
}

// forget drops the entry of a fired timer unless path was rescheduled since.
func (p *pendingFiles) forget(f firedFile) {
	if t, ok := p.timers[f.path]; ok && t.seq == f.seq {
		delete(p.timers, f.path)
	}
}

func (p *pendingFiles) stopAll() {
	for _, t := range p.timers {
		t.timer.Stop()
	}
}
