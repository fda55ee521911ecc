// Package cleaner removes scan items, passing each one through the
// containment policy first.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/security"
)

// DefaultRetryDelays is the backoff applied while a file is busy
var DefaultRetryDelays = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
	2 * time.Second,
}

// Cleaner handles file deletion with safeguards
type Cleaner struct {
	containment *security.Containment
	logger      *slog.Logger
	progress    *progress.ProgressReporter
	dryRun      bool
	retryDelays []time.Duration

	// remove is swapped in tests to simulate busy files
	remove func(path string, dir bool) error
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithLogger sets the logger used for per-item events
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// WithProgress publishes clean progress to pr
func WithProgress(pr *progress.ProgressReporter) Option {
	return func(c *Cleaner) {
		c.progress = pr
	}
}

// WithDryRun reports what would be removed without touching anything
func WithDryRun(dryRun bool) Option {
	return func(c *Cleaner) {
		c.dryRun = dryRun
	}
}

// WithRetryDelays replaces the busy-file backoff
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *Cleaner) {
		c.retryDelays = delays
	}
}

// New creates a Cleaner bound to a containment policy
func New(containment *security.Containment, opts ...Option) *Cleaner {
	c := &Cleaner{
		containment: containment,
		logger:      slog.Default(),
		retryDelays: DefaultRetryDelays,
		remove:      removePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DryRun reports whether the cleaner only simulates deletions
func (c *Cleaner) DryRun() bool {
	return c.dryRun
}

// Report is the full outcome of one Run
type Report struct {
	Result   *scanner.CleanupResult
	Failures []*DeletionError
	Manifest *DeletionManifest
}

// Delete removes every item of files whose category is in filter (all
// items when filter is empty) and returns the aggregate result
func (c *Cleaner) Delete(ctx context.Context, files []scanner.CleanableFile, filter ...scanner.Category) *scanner.CleanupResult {
	return c.Run(ctx, files, filter...).Result
}

// Run is Delete with the categorized failures and the manifest of removed
// items. Items are independent: a failure is recorded and the next item is
// tried. Cancellation is honored between items only.
func (c *Cleaner) Run(ctx context.Context, files []scanner.CleanableFile, filter ...scanner.Category) *Report {
	selected := selectCategories(files, filter)

	report := &Report{
		Result: &scanner.CleanupResult{
			Errors:  []string{},
			Deleted: []string{},
			DryRun:  c.dryRun,
		},
		Manifest: NewDeletionManifest(),
	}
	result := report.Result

	var totalSize int64
	for _, f := range selected {
		totalSize += f.Size
	}

	startTime := time.Now()
	c.reportCleanProgress(progress.PhaseCleaning, "", result, len(report.Failures), len(selected), totalSize, startTime)

	for i, file := range selected {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("cleanup interrupted", "remaining", len(selected)-i)
			break
		}

		c.reportCleanProgress(progress.PhaseCleaning, file.Path, result, len(report.Failures), len(selected), totalSize, startTime)

		removed, delErr := c.deleteWithRetry(ctx, file)
		switch {
		case delErr != nil:
			report.Failures = append(report.Failures, delErr)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, delErr.Original))
			c.logger.Warn("delete failed", "path", file.Path, "reason", delErr.Reason.String(), "error", delErr.Original)
		case removed:
			result.Deleted = append(result.Deleted, file.Path)
			result.DeletedCount++
			result.FreedBytes += file.Size
			report.Manifest.Add(file.Path, file.Size, file.Category)
			c.logger.Debug("deleted", "path", file.Path, "bytes", file.Size, "dry_run", c.dryRun)
		default:
			c.logger.Debug("already gone", "path", file.Path)
		}
	}

	c.reportCleanProgress(progress.PhaseComplete, "", result, len(report.Failures), len(selected), totalSize, startTime)
	c.logger.Info("cleanup complete",
		"deleted", result.DeletedCount,
		"bytes", result.FreedBytes,
		"errors", len(result.Errors),
		"dry_run", c.dryRun,
		"elapsed", time.Since(startTime))

	return report
}

// deleteWithRetry attempts a deletion, retrying while the file is busy.
// removed is false with a nil error when the path was already gone.
func (c *Cleaner) deleteWithRetry(ctx context.Context, file scanner.CleanableFile) (removed bool, delErr *DeletionError) {
	for attempt := 0; ; attempt++ {
		removed, delErr = c.deleteOne(file)
		if delErr == nil || !delErr.Retryable || attempt >= len(c.retryDelays) {
			return removed, delErr
		}

		select {
		case <-ctx.Done():
			return false, delErr
		case <-time.After(c.retryDelays[attempt]):
		}
	}
}

// deleteOne runs the containment check and the pre-removal Lstat, then
// removes the entry
func (c *Cleaner) deleteOne(file scanner.CleanableFile) (bool, *DeletionError) {
	if err := c.containment.Check(file.Path); err != nil {
		return false, CategorizeError(file.Path, err)
	}

	info, err := IsSafeToDelete(file.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if errors.Is(err, errSymlink) || errors.Is(err, errSpecialFile) {
			return false, &DeletionError{Path: file.Path, Reason: ErrorInvalidPath, Original: err}
		}
		return false, CategorizeError(file.Path, err)
	}

	if c.dryRun {
		return true, nil
	}

	if err := c.remove(file.Path, info.IsDir()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, CategorizeError(file.Path, err)
	}
	return true, nil
}

// removePath uses RemoveAll for directories (e.g. node_modules, venv)
func removePath(path string, dir bool) error {
	if dir {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

func selectCategories(files []scanner.CleanableFile, filter []scanner.Category) []scanner.CleanableFile {
	if len(filter) == 0 {
		return files
	}
	want := make(map[scanner.Category]bool, len(filter))
	for _, c := range filter {
		want[c] = true
	}
	var out []scanner.CleanableFile
	for _, f := range files {
		if want[f.Category] {
			out = append(out, f)
		}
	}
	return out
}

// reportCleanProgress reports clean progress to listeners
func (c *Cleaner) reportCleanProgress(phase progress.Phase, currentFile string, result *scanner.CleanupResult, errorCount, totalFiles int, totalSize int64, startTime time.Time) {
	if c.progress == nil {
		return
	}

	c.progress.UpdateCleanProgress(&progress.CleanProgress{
		Phase:        phase,
		CurrentFile:  currentFile,
		DeletedFiles: result.DeletedCount,
		TotalFiles:   totalFiles,
		DeletedSize:  result.FreedBytes,
		TotalSize:    totalSize,
		ErrorCount:   errorCount,
		DryRun:       c.dryRun,
		StartTime:    startTime,
	})
}
