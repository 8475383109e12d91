// Package snapshot renders the web timeline to a PNG, once or on a cron
// schedule.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"

	"schedview/internal/capture"
	"schedview/internal/config"
	appLog "schedview/internal/log"
)

// CaptureFunc renders one snapshot. capture.CaptureTimelinePNG in production.
type CaptureFunc func(ctx context.Context, opts capture.Options) error

// OptionsFromConfig maps the snapshot section onto capture options.
func OptionsFromConfig(cfg *config.Config) capture.Options {
	opts := capture.Options{
		URL:        cfg.SnapshotURL(),
		OutputPath: cfg.Snapshot.Output,
		Width:      cfg.Snapshot.Width,
		Height:     cfg.Snapshot.Height,
		Timeout:    time.Duration(cfg.Snapshot.TimeoutSeconds) * time.Second,
	}
	if cfg.BasicAuth != nil {
		opts.Username = cfg.BasicAuth.Username
		opts.Password = cfg.BasicAuth.Password
	}
	return opts
}

// Scheduler runs the capture on a cron spec. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	capture CaptureFunc
	opts    capture.Options

	mu     sync.Mutex
	ctx    context.Context
	last   time.Time
	lastOK bool
}

// NewScheduler validates spec (standard 5-field cron or @descriptors) and
// registers the capture job.
func NewScheduler(spec string, loc *time.Location, opts capture.Options, fn CaptureFunc) (*Scheduler, error) {
	if fn == nil {
		fn = capture.CaptureTimelinePNG
	}
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		capture: fn,
		opts:    opts,
		ctx:     context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, s.runJob); err != nil {
		return nil, goerr.Wrap(err, "invalid snapshot cron spec", goerr.V("cron", spec))
	}
	return s, nil
}

// Start runs the scheduler until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	appLog.Info("snapshot scheduler started", "output", s.opts.OutputPath)
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		appLog.Info("snapshot scheduler stopped")
	}()
}

// RunOnce captures a snapshot immediately.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	err := s.capture(ctx, s.opts)

	s.mu.Lock()
	s.last = time.Now()
	s.lastOK = err == nil
	s.mu.Unlock()

	if err != nil {
		return goerr.Wrap(err, "snapshot capture failed", goerr.V("url", s.opts.URL))
	}
	return nil
}

// Last reports when the previous run finished and whether it succeeded.
func (s *Scheduler) Last() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastOK
}

func (s *Scheduler) runJob() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.RunOnce(ctx); err != nil {
		appLog.Error("scheduled snapshot failed", err)
	}
}

// cronLogger routes cron's own logging through internal/log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
