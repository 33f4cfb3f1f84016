package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/match"
	"marquee/internal/notifications"
	"marquee/internal/ratelimit"
	"marquee/internal/request"
	"marquee/internal/selection"
	"marquee/internal/services/plex"
)

// Daemon coordinates the request workflow services and enforces
// single-instance execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	coordinator *request.Coordinator
	limiter     *ratelimit.Limiter
	sessions    *selection.Registry
	notifier    notifications.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	sweeper chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	ActiveSessions int
	TrackedUsers   int
	LockFilePath   string
}

// New constructs a daemon with all workflow dependencies wired. The searcher
// parameter overrides the Plex-backed provider and exists for tests; pass
// nil to build the provider from configuration.
func New(cfg *config.Config, logger *slog.Logger, searcher match.Searcher) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if searcher == nil {
		client, err := plex.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("build plex client: %w", err)
		}
		searcher = client
	}

	ranker := match.NewRanker(searcher, logger, cfg.Matching.MinSimilarity, cfg.Matching.MaxResults)
	limiter := ratelimit.New(time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.MaxRequests)
	sessions := selection.NewRegistry(time.Duration(cfg.Selection.TimeoutSeconds)*time.Second, cfg.Selection.MaxOptions)
	notifier := notifications.NewService(cfg)

	coordinator := request.NewCoordinator(ranker, limiter, sessions, notifier, logger, request.Limits{
		MinTitleLength: cfg.Matching.MinTitleLength,
		MaxTitleLength: cfg.Matching.MaxTitleLength,
		MaxShown:       cfg.Matching.MaxShown,
	})

	lockPath := filepath.Join(cfg.Paths.LogDir, "marqueed.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logger,
		coordinator: coordinator,
		limiter:     limiter,
		sessions:    sessions,
		notifier:    notifier,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and launches the
// background sweeper. It returns once everything is running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.sweeper = make(chan struct{})
	go d.runSweeper(runCtx)

	d.running.Store(true)
	d.logger.Info("marquee daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server, stops the sweeper, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.sweeper != nil {
		<-d.sweeper
		d.sweeper = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped")
}

// runSweeper periodically expires idle selection sessions and empty
// rate-limit windows.
func (d *Daemon) runSweeper(ctx context.Context) {
	defer close(d.sweeper)

	interval := time.Duration(d.cfg.Selection.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logging.NewComponentLogger(d.logger, "sweeper")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired := d.sessions.Sweep()
			idle := d.limiter.Sweep()
			if expired > 0 || idle > 0 {
				log.Debug("sweep completed",
					logging.Int("expired_sessions", expired),
					logging.Int("idle_users", idle))
			}
		}
	}
}

// APIAddr returns the address the API server is listening on, or "" before
// Start. Useful when the bind address requested an ephemeral port.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:        d.running.Load(),
		PID:            os.Getpid(),
		ActiveSessions: d.sessions.Active(),
		TrackedUsers:   d.limiter.TrackedUsers(),
		LockFilePath:   d.lockPath,
	}
}

// TestNotification sends a test notification through the configured channel.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.Publish(ctx, notifications.EventTest, nil)
}
