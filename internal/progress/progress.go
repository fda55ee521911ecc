package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/duster/pkg/utils"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseCleaning Phase = "cleaning"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ScanProgress represents progress during scanning
type ScanProgress struct {
	Phase      Phase
	Scanner    string // unit that just started or finished
	FilesFound int
	TotalSize  int64
	UnitsTotal int
	UnitsDone  int
	StartTime  time.Time
	Error      error
}

// CleanProgress represents progress during cleanup
type CleanProgress struct {
	Phase        Phase
	CurrentFile  string
	DeletedFiles int
	TotalFiles   int
	DeletedSize  int64
	TotalSize    int64
	ErrorCount   int
	DryRun       bool
	StartTime    time.Time
}

// ProgressReporter provides thread-safe progress reporting
type ProgressReporter struct {
	scanProgress  *ScanProgress
	cleanProgress *CleanProgress
	mu            sync.RWMutex
	listeners     []chan any
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners: make([]chan any, 0),
	}
}

// Subscribe returns a channel that receives *ScanProgress and *CleanProgress updates
func (pr *ProgressReporter) Subscribe() <-chan any {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan any, 16)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan any) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScanProgress updates scan progress and notifies listeners
func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	pr.scanProgress = update
	pr.mu.Unlock()
	pr.broadcast(update)
}

// UpdateCleanProgress updates clean progress and notifies listeners
func (pr *ProgressReporter) UpdateCleanProgress(update *CleanProgress) {
	pr.mu.Lock()
	pr.cleanProgress = update
	pr.mu.Unlock()
	pr.broadcast(update)
}

// broadcast holds the read lock while sending so Unsubscribe cannot close
// a channel mid-send. Sends never block.
func (pr *ProgressReporter) broadcast(update any) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	for _, listener := range pr.listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// GetScanProgress returns the current scan progress
func (pr *ProgressReporter) GetScanProgress() *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scanProgress
}

// GetCleanProgress returns the current clean progress
func (pr *ProgressReporter) GetCleanProgress() *CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.cleanProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning [%d/%d] %s... Found %s items (%s) [%s]",
			p.UnitsDone,
			p.UnitsTotal,
			p.Scanner,
			utils.FormatCount(p.FilesFound),
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %s items (%s) in %s",
			utils.FormatCount(p.FilesFound),
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatCleanProgress returns a human-readable clean progress string
func FormatCleanProgress(p *CleanProgress) string {
	if p == nil {
		return "Preparing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseCleaning:
		percentage := 0
		if p.TotalFiles > 0 {
			percentage = (p.DeletedFiles * 100) / p.TotalFiles
		}

		eta := ""
		if p.DeletedFiles > 0 && p.TotalFiles > p.DeletedFiles {
			avgTime := elapsed / time.Duration(p.DeletedFiles)
			remaining := time.Duration(p.TotalFiles-p.DeletedFiles) * avgTime
			eta = fmt.Sprintf(" ETA: %s", FormatDuration(remaining))
		}

		verb := "Cleaning"
		if p.DryRun {
			verb = "Simulating"
		}

		return fmt.Sprintf("%s... %d/%d items (%d%%) - %s freed%s",
			verb,
			p.DeletedFiles,
			p.TotalFiles,
			percentage,
			utils.FormatBytes(p.DeletedSize),
			eta)
	case PhaseComplete:
		return fmt.Sprintf("Cleanup complete: %d items deleted (%s) in %s",
			p.DeletedFiles,
			utils.FormatBytes(p.DeletedSize),
			FormatDuration(elapsed))
	default:
		return "Preparing cleanup..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
