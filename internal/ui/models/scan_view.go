package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/ui/styles"
	"github.com/fenilsonani/duster/pkg/utils"
)

// ScanViewModel shows a spinner and unit progress while the scan runs
type ScanViewModel struct {
	ctx       context.Context
	scan      ScanFunc
	reporter  *progress.ProgressReporter
	updates   <-chan any
	spinner   spinner.Model
	scanning  bool
	startTime time.Time
	latest    *progress.ScanProgress
	result    *scanner.ScanResult
}

// NewScanViewModel creates a new scan view model. reporter may be nil.
func NewScanViewModel(ctx context.Context, scan ScanFunc, reporter *progress.ProgressReporter) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &ScanViewModel{
		ctx:       ctx,
		scan:      scan,
		reporter:  reporter,
		spinner:   s,
		scanning:  true,
		startTime: time.Now(),
	}
}

// Init starts the spinner, the scan and the progress listener
func (m *ScanViewModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.performScan}
	if m.reporter != nil {
		m.updates = m.reporter.Subscribe()
		cmds = append(cmds, waitForProgress(m.updates))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (*ScanViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ScanProgressMsg:
		m.latest = msg.Progress
		return m, waitForProgress(m.updates)
	}

	return m, nil
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Scanning"))
	b.WriteString("\n\n")

	if !m.scanning {
		b.WriteString(styles.SuccessStyle.Render("Scan complete"))
		if m.result != nil {
			fmt.Fprintf(&b, ": %s items, %s",
				utils.FormatCount(m.result.TotalCount()),
				utils.FormatBytes(m.result.TotalSize()))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" Scanning... ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", progress.FormatDuration(time.Since(m.startTime)))))
	b.WriteString("\n\n")

	if p := m.latest; p != nil {
		if p.UnitsTotal > 0 {
			b.WriteString(styles.ProgressBar(p.UnitsDone, p.UnitsTotal, 30))
			fmt.Fprintf(&b, " %d/%d", p.UnitsDone, p.UnitsTotal)
			b.WriteString("\n")
		}
		if p.Scanner != "" {
			b.WriteString(styles.DimStyle.Render("Current: "))
			b.WriteString(styles.FilePathStyle.Render(p.Scanner))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nFound %s items, %s",
			styles.BoldStyle.Render(utils.FormatCount(p.FilesFound)),
			styles.FileSizeStyle.Render(utils.FormatBytes(p.TotalSize)))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to cancel"))

	return b.String()
}

// finish stops the spinner and releases the progress subscription
func (m *ScanViewModel) finish(result *scanner.ScanResult) {
	m.scanning = false
	m.result = result
	if m.reporter != nil && m.updates != nil {
		m.reporter.Unsubscribe(m.updates)
		m.updates = nil
	}
}

func (m *ScanViewModel) performScan() tea.Msg {
	return ScanCompleteMsg{Result: m.scan(m.ctx)}
}

// ScanProgressMsg relays an update from the progress reporter
type ScanProgressMsg struct {
	Progress *progress.ScanProgress
}

// waitForProgress blocks on the next scan update. A closed or nil channel
// yields no message.
func waitForProgress(updates <-chan any) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		for update := range updates {
			if p, ok := update.(*progress.ScanProgress); ok {
				return ScanProgressMsg{Progress: p}
			}
		}
		return nil
	}
}
