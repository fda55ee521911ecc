package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fenilsonani/duster/internal/progress"
)

// syncBuffer guards a bytes.Buffer written from the follower goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLiveProgressDisabledForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)

	if lp.Enabled() {
		t.Fatal("a buffer is not a terminal")
	}

	lp.Render(&progress.ScanProgress{Phase: progress.PhaseScanning, StartTime: time.Now()})
	lp.Finish()
	if buf.Len() != 0 {
		t.Errorf("disabled progress wrote %q", buf.String())
	}

	stop := lp.Follow(progress.NewProgressReporter())
	stop()
}

func TestLiveProgressRender(t *testing.T) {
	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)
	lp.SetEnabled(true)

	start := time.Now()
	lp.Render(&progress.ScanProgress{
		Phase:      progress.PhaseScanning,
		Scanner:    "trash",
		FilesFound: 3,
		UnitsTotal: 2,
		UnitsDone:  1,
		StartTime:  start,
	})
	if !strings.Contains(buf.String(), "Scanning [1/2] trash") {
		t.Errorf("first update not drawn: %q", buf.String())
	}

	before := buf.Len()
	lp.Render(&progress.ScanProgress{Phase: progress.PhaseScanning, Scanner: "temp", StartTime: start})
	if buf.Len() != before {
		t.Error("an update inside the refresh interval should be dropped")
	}

	lp.Render(&progress.ScanProgress{Phase: progress.PhaseComplete, FilesFound: 3, StartTime: start})
	if !strings.Contains(buf.String(), "Scan complete") {
		t.Error("the final update of a phase is always drawn")
	}

	lp.Render("not a progress update")
	lp.Finish()
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Finish should end the status line")
	}

	before = buf.Len()
	lp.Finish()
	if buf.Len() != before {
		t.Error("Finish with nothing drawn should be a no-op")
	}
}

func TestLiveProgressFollow(t *testing.T) {
	buf := &syncBuffer{}
	lp := NewLiveProgress(buf)
	lp.SetEnabled(true)

	reporter := progress.NewProgressReporter()
	stop := lp.Follow(reporter)

	reporter.UpdateCleanProgress(&progress.CleanProgress{
		Phase:        progress.PhaseComplete,
		DeletedFiles: 2,
		DeletedSize:  2048,
		StartTime:    time.Now(),
	})

	stop()
	stop()

	out := buf.String()
	if !strings.Contains(out, "Cleanup complete: 2 items deleted") {
		t.Errorf("followed update not drawn: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("stop should finish the line")
	}
}
