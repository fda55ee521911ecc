package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/ui/layout"
)

// DefaultRefreshInterval caps how often the live line is redrawn
const DefaultRefreshInterval = 100 * time.Millisecond

// LiveProgress redraws a single status line from progress reporter updates.
// It stays silent unless the output is a terminal.
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	termWidth  int
	enabled    bool
	interval   time.Duration
	lastUpdate time.Time
	drawn      bool
}

// NewLiveProgress creates a live progress display writing to out
func NewLiveProgress(out io.Writer) *LiveProgress {
	lp := &LiveProgress{
		out:       out,
		termWidth: 80,
		interval:  DefaultRefreshInterval,
	}

	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		lp.enabled = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
			lp.termWidth = w
		}
	}
	return lp
}

// SetEnabled enables or disables live progress
func (lp *LiveProgress) SetEnabled(enabled bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.enabled = enabled
}

// Enabled reports whether updates are drawn
func (lp *LiveProgress) Enabled() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.enabled
}

// Follow draws every update published by reporter until the returned stop
// function is called. stop waits for the listener to drain and ends the line.
func (lp *LiveProgress) Follow(reporter *progress.ProgressReporter) (stop func()) {
	if reporter == nil || !lp.Enabled() {
		return func() {}
	}

	updates := reporter.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			lp.Render(update)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			reporter.Unsubscribe(updates)
			<-done
			lp.Finish()
		})
	}
}

// Render draws a *progress.ScanProgress or *progress.CleanProgress. Updates
// arriving faster than the refresh interval are dropped, except the final
// one of a phase.
func (lp *LiveProgress) Render(update any) {
	var line string
	final := false

	switch p := update.(type) {
	case *progress.ScanProgress:
		line = progress.FormatScanProgress(p)
		final = p != nil && p.Phase != progress.PhaseScanning
	case *progress.CleanProgress:
		line = progress.FormatCleanProgress(p)
		final = p != nil && p.Phase != progress.PhaseCleaning
	default:
		return
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled {
		return
	}

	now := time.Now()
	if !final && lp.drawn && now.Sub(lp.lastUpdate) < lp.interval {
		return
	}
	lp.lastUpdate = now
	lp.drawn = true

	fmt.Fprintf(lp.out, "\r\033[K%s", layout.TruncateMiddle(line, lp.termWidth-1))
}

// Finish moves past the status line if anything was drawn
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || !lp.drawn {
		return
	}
	fmt.Fprint(lp.out, "\n")
	lp.drawn = false
}
