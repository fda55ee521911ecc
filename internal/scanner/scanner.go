package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/duster/internal/config"
	"github.com/fenilsonani/duster/internal/platform"
	"github.com/fenilsonani/duster/internal/progress"
)

// Scanner is one read-only scan unit. A missing or unreadable root yields
// no items rather than an error.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, env *Env) ([]CleanableFile, error)
}

// Env is everything a unit may read: the effective configuration and the
// resolved platform roots.
type Env struct {
	Config   *config.Config
	Platform *platform.Info
}

// NewEnv pairs a config with platform roots
func NewEnv(cfg *config.Config, info *platform.Info) *Env {
	return &Env{Config: cfg, Platform: info}
}

// BasePath is the root walked by the tree scanners
func (e *Env) BasePath() string {
	return e.Config.ResolveBasePath(e.Platform.HomeDir)
}

func (e *Env) excluded(path string) bool {
	return e.Config.IsExcluded(path)
}

// Request selects which categories to scan. An empty Categories or All
// runs everything.
type Request struct {
	Categories []Category
	All        bool
}

// RequestFromOptions maps the selected category flags of opts to a Request
func RequestFromOptions(opts config.ScanOptions) (Request, error) {
	return RequestFromKeys(opts.SelectedKeys())
}

// RequestFromKeys parses category keys such as "cache" or "build"
func RequestFromKeys(keys []string) (Request, error) {
	if len(keys) == 0 {
		return Request{All: true}, nil
	}

	req := Request{}
	for _, key := range keys {
		c, err := ParseCategory(key)
		if err != nil {
			return Request{}, err
		}
		req.Categories = append(req.Categories, c)
	}
	return req, nil
}

func (r Request) categories() []Category {
	if r.All || len(r.Categories) == 0 {
		return AllCategories()
	}
	return r.Categories
}

// Units returns the scan units that cover category
func Units(category Category, cfg *config.Config) []Scanner {
	switch category {
	case Cache:
		return []Scanner{CacheScanner{}, KnownCacheScanner{}}
	case Trash:
		return []Scanner{TrashScanner{}}
	case Temp:
		return []Scanner{TempScanner{}}
	case Downloads:
		return []Scanner{DownloadsScanner{}}
	case BuildArtifact:
		return []Scanner{BuildArtifactsScanner{}, GlobalCacheScanner{}}
	case LargeFile:
		return []Scanner{LargeFilesScanner{}}
	case Duplicate:
		return []Scanner{DuplicateScanner{Workers: cfg.DuplicateWorkers}}
	case OldFile:
		return []Scanner{OldFilesScanner{}}
	default:
		return nil
	}
}

// Orchestrator runs the units for a request concurrently and merges their output
type Orchestrator struct {
	env      *Env
	logger   *slog.Logger
	progress *progress.ProgressReporter
	workers  int
	units    func(Category, *config.Config) []Scanner
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger used for per-unit events
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress publishes scan progress to pr
func WithProgress(pr *progress.ProgressReporter) Option {
	return func(o *Orchestrator) {
		o.progress = pr
	}
}

// WithConcurrency bounds how many units run at once
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// WithUnits replaces the category to unit table
func WithUnits(units func(Category, *config.Config) []Scanner) Option {
	return func(o *Orchestrator) {
		o.units = units
	}
}

// NewOrchestrator creates an orchestrator over env
func NewOrchestrator(env *Env, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		env:     env,
		logger:  slog.Default(),
		workers: runtime.NumCPU(),
		units:   Units,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run scans every unit covering the requested categories. Unit failures
// and panics are recorded as "<Name>: <err>" and never abort the others.
// When two units report the same path the first one merged wins.
func (o *Orchestrator) Run(ctx context.Context, req Request) *ScanResult {
	var units []Scanner
	for _, c := range req.categories() {
		units = append(units, o.units(c, o.env.Config)...)
	}

	startTime := time.Now()
	result := &ScanResult{Files: []CleanableFile{}, Errors: []string{}}

	var (
		mu        sync.Mutex
		unitsDone int
	)

	o.reportProgress(progress.PhaseScanning, "", result, len(units), 0, startTime)

	g := new(errgroup.Group)
	g.SetLimit(max(o.workers, 1))

	for _, unit := range units {
		g.Go(func() error {
			unitStart := time.Now()
			o.logger.Debug("scanner started", "scanner", unit.Name())

			files, err := o.runUnit(ctx, unit)

			mu.Lock()
			defer mu.Unlock()

			unitsDone++
			if err != nil {
				o.logger.Warn("scanner failed", "scanner", unit.Name(), "error", err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", unit.Name(), err))
			} else {
				result.Files = append(result.Files, files...)
				o.logger.Debug("scanner finished",
					"scanner", unit.Name(),
					"items", len(files),
					"elapsed", time.Since(unitStart))
			}
			o.reportProgress(progress.PhaseScanning, unit.Name(), result, len(units), unitsDone, startTime)
			return nil
		})
	}
	_ = g.Wait()

	result.Files = dedupeByPath(result.Files)

	o.logger.Info("scan complete",
		"items", result.TotalCount(),
		"bytes", result.TotalSize(),
		"errors", len(result.Errors),
		"elapsed", time.Since(startTime))
	o.reportProgress(progress.PhaseComplete, "", result, len(units), unitsDone, startTime)

	return result
}

// runUnit converts a panic inside a unit into an error
func (o *Orchestrator) runUnit(ctx context.Context, unit Scanner) (files []CleanableFile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return unit.Scan(ctx, o.env)
}

func (o *Orchestrator) reportProgress(phase progress.Phase, unit string, result *ScanResult, total, done int, startTime time.Time) {
	if o.progress == nil {
		return
	}
	o.progress.UpdateScanProgress(&progress.ScanProgress{
		Phase:      phase,
		Scanner:    unit,
		FilesFound: result.TotalCount(),
		TotalSize:  result.TotalSize(),
		UnitsTotal: total,
		UnitsDone:  done,
		StartTime:  startTime,
	})
}

// dedupeByPath keeps the first occurrence of each path
func dedupeByPath(files []CleanableFile) []CleanableFile {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		out = append(out, f)
	}
	return out
}
