// Package daemon runs scheduled background scans that keep the scan cache
// warm. It never deletes anything.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/scancache"
	"github.com/fenilsonani/duster/internal/scanner"
)

// ScanJobName is the name of the recurring scan job
const ScanJobName = "scan"

// ErrAlreadyRunning is returned by Run when another watcher holds the lock
var ErrAlreadyRunning = errors.New("another watcher is already running")

// Daemon refreshes the scan cache on a schedule
type Daemon struct {
	env      *scanner.Env
	opts     config.ScanOptions
	store    *scancache.Store
	schedule string
	lockPath string
	logger   *slog.Logger

	orchestratorOpts []scanner.Option

	mu       sync.RWMutex
	running  bool
	lastScan time.Time
	lastKey  string
}

// Option configures a Daemon
type Option func(*Daemon)

// WithLogger sets the logger for the daemon and its scheduler
func WithLogger(logger *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = logger
	}
}

// WithSchedule sets the cron expression or descriptor
func WithSchedule(schedule string) Option {
	return func(d *Daemon) {
		d.schedule = schedule
	}
}

// WithLockFile sets the lock file guarding against two watchers
func WithLockFile(path string) Option {
	return func(d *Daemon) {
		d.lockPath = path
	}
}

// WithOrchestratorOptions forwards options to each scan's orchestrator
func WithOrchestratorOptions(opts ...scanner.Option) Option {
	return func(d *Daemon) {
		d.orchestratorOpts = append(d.orchestratorOpts, opts...)
	}
}

// New creates a daemon scanning what opts selects with env's effective
// config, saving results into store
func New(env *scanner.Env, opts config.ScanOptions, store *scancache.Store, options ...Option) (*Daemon, error) {
	d := &Daemon{
		env:      env,
		opts:     opts,
		store:    store,
		schedule: env.Config.Watch.Schedule,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(d)
	}

	if d.schedule == "" {
		d.schedule = config.DefaultWatchSchedule
	}
	if err := ValidateSchedule(d.schedule); err != nil {
		return nil, err
	}
	if d.lockPath == "" && env.Platform.AppCacheDir != "" {
		d.lockPath = filepath.Join(env.Platform.AppCacheDir, "watch.lock")
	}
	return d, nil
}

// Schedule returns the effective schedule
func (d *Daemon) Schedule() string {
	return d.schedule
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// LastScan returns when the last scan finished and the cache key it was saved under
func (d *Daemon) LastScan() (time.Time, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastScan, d.lastKey
}

// ScanOnce runs one scan and saves it to the cache
func (d *Daemon) ScanOnce(ctx context.Context) (*scanner.ScanResult, error) {
	req, err := scanner.RequestFromOptions(d.opts)
	if err != nil {
		return nil, err
	}

	opts := append([]scanner.Option{scanner.WithLogger(d.logger)}, d.orchestratorOpts...)
	result := scanner.NewOrchestrator(d.env, opts...).Run(ctx, req)

	if err := ctx.Err(); err != nil {
		// A partial scan must not be cached as if it were complete
		return result, err
	}

	key := scancache.Fingerprint(d.opts, d.env.Config)
	if err := d.store.Save(result, key); err != nil {
		return result, err
	}

	d.mu.Lock()
	d.lastScan = time.Now()
	d.lastKey = key
	d.mu.Unlock()

	d.logger.Info("background scan saved",
		"items", result.TotalCount(),
		"bytes", result.TotalSize(),
		"errors", len(result.Errors))
	return result, nil
}

// Run scans immediately, then on every tick until ctx is cancelled
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	if d.lockPath != "" {
		if err := acquireLock(d.lockPath); err != nil {
			return err
		}
		defer func() {
			if err := releaseLock(d.lockPath); err != nil {
				d.logger.Warn("failed to remove lock file", "path", d.lockPath, "error", err)
			}
		}()
	}

	scheduler := NewScheduler(d.logger)
	if err := scheduler.AddJob(ScanJobName, d.schedule, func(ctx context.Context) error {
		_, err := d.ScanOnce(ctx)
		return err
	}); err != nil {
		return err
	}

	d.logger.Info("watcher starting", "schedule", d.schedule, "cache", d.store.Path())

	if err := scheduler.TriggerJob(ctx, ScanJobName); err != nil && ctx.Err() == nil {
		d.logger.Warn("initial scan failed", "error", err)
	}

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop(10 * time.Second)

	<-ctx.Done()
	d.logger.Info("watcher shutting down")
	return nil
}

// acquireLock creates the lock file holding our PID. A lock left behind by
// a process that no longer exists is taken over.
func acquireLock(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if err == nil {
			_, err = fmt.Fprintf(file, "%d\n", os.Getpid())
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			return err
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}

		if holderAlive(path) {
			return ErrAlreadyRunning
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}
	return ErrAlreadyRunning
}

// holderAlive reports whether the PID recorded in the lock file is a live
// process. An unreadable lock is treated as live.
func holderAlive(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return !os.IsNotExist(err)
	}
	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || pid <= 0 {
		return false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}
	return alive
}

func releaseLock(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
