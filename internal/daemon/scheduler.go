package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is the work a scheduled job performs on each tick
type JobFunc func(ctx context.Context) error

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  time.Time
	PrevRun  time.Time
}

// parser accepts standard five-field expressions and descriptors such as
// "@hourly" or "@every 30m"
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSchedule reports whether spec is a schedule the scheduler accepts
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs named jobs on cron schedules. A tick is skipped while the
// previous run of the same job is still going, and a panicking job is
// logged instead of killing the process.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu        sync.RWMutex
	jobs      map[string]cron.EntryID
	funcs     map[string]JobFunc
	schedules map[string]string
	running   bool
	ctx       context.Context
}

// NewScheduler creates a stopped scheduler
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}

	c := cron.New(cron.WithParser(parser), cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	return &Scheduler{
		cron:      c,
		logger:    logger,
		jobs:      make(map[string]cron.EntryID),
		funcs:     make(map[string]JobFunc),
		schedules: make(map[string]string),
		ctx:       context.Background(),
	}
}

// AddJob registers fn under name on schedule
func (s *Scheduler) AddJob(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(schedule, func() {
		s.runJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.jobs[name] = id
	s.funcs[name] = fn
	s.schedules[name] = schedule

	s.logger.Info("job added", "job", name, "schedule", schedule)
	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.funcs, name)
	delete(s.schedules, name)

	s.logger.Info("job removed", "job", name)
	return nil
}

// Start begins firing jobs. Jobs receive ctx and stop being scheduled once
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.ctx = ctx
	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop stops the scheduler and waits up to timeout for running jobs
func (s *Scheduler) Stop(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(timeout):
		s.logger.Warn("scheduler stop timed out", "timeout", timeout)
	}

	s.running = false
	s.logger.Info("scheduler stopped")
}

// NextRun returns the next run time for a job. It is zero until Start.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.jobs[name]
	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}
	return s.cron.Entry(id).Next, nil
}

// ListJobs returns information about all jobs, ordered by next run
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[cron.EntryID]string, len(s.jobs))
	for name, id := range s.jobs {
		names[id] = name
	}

	var jobs []JobInfo
	for _, entry := range s.cron.Entries() {
		name, ok := names[entry.ID]
		if !ok {
			continue
		}
		jobs = append(jobs, JobInfo{
			Name:     name,
			Schedule: s.schedules[name],
			NextRun:  entry.Next,
			PrevRun:  entry.Prev,
		})
	}
	return jobs
}

// TriggerJob runs a job immediately on the caller's goroutine
func (s *Scheduler) TriggerJob(ctx context.Context, name string) error {
	s.mu.RLock()
	fn, exists := s.funcs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.logger.Info("job triggered manually", "job", name)
	return fn(ctx)
}

func (s *Scheduler) runJob(name string) {
	s.mu.RLock()
	fn := s.funcs[name]
	ctx := s.ctx
	s.mu.RUnlock()

	if fn == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Debug("job started", "job", name)
	if err := fn(ctx); err != nil {
		s.logger.Error("job failed", "job", name, "error", err)
		return
	}
	s.logger.Debug("job finished", "job", name, "elapsed", time.Since(start))
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
