package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/ui/layout"
	"github.com/fenilsonani/duster/internal/ui/styles"
	"github.com/fenilsonani/duster/pkg/utils"
)

// RiskLevel represents the risk level of a deletion operation
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

const (
	buttonYes = iota
	buttonBack
	buttonCancel
)

// previewCount is how many of the largest items the confirmation lists
const previewCount = 5

// ConfirmViewModel handles the confirmation screen
type ConfirmViewModel struct {
	files     []scanner.CleanableFile
	cursor    int
	riskLevel RiskLevel
	homeDir   string
	dryRun    bool
	width     int
	height    int
}

// NewConfirmViewModel creates a new confirm view model. High risk selections
// start on Cancel.
func NewConfirmViewModel(files []scanner.CleanableFile, width, height int, homeDir string, dryRun bool) *ConfirmViewModel {
	risk := CalculateRiskLevel(files)
	cursor := buttonYes
	if risk == RiskHigh {
		cursor = buttonCancel
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &ConfirmViewModel{
		files:     files,
		cursor:    cursor,
		riskLevel: risk,
		homeDir:   homeDir,
		dryRun:    dryRun,
		width:     width,
		height:    height,
	}
}

// CalculateRiskLevel grades a selection by item count and categories
func CalculateRiskLevel(files []scanner.CleanableFile) RiskLevel {
	categories := make(map[scanner.Category]bool)
	for _, f := range files {
		categories[f.Category] = true
	}

	if len(files) > 500 || categories[scanner.Downloads] || categories[scanner.OldFile] {
		return RiskHigh
	}
	if len(files) >= 50 || categories[scanner.Duplicate] || categories[scanner.LargeFile] || len(categories) > 2 {
		return RiskMedium
	}
	return RiskLow
}

// Risk returns the computed risk level
func (m *ConfirmViewModel) Risk() RiskLevel {
	return m.riskLevel
}

var (
	keyLeft    = key.NewBinding(key.WithKeys("left", "h", "shift+tab"))
	keyRight   = key.NewBinding(key.WithKeys("right", "l", "tab"))
	keyEnter   = key.NewBinding(key.WithKeys("enter"))
	keyYes     = key.NewBinding(key.WithKeys("y"))
	keyBack    = key.NewBinding(key.WithKeys("b", "e", "esc"))
	keyNo      = key.NewBinding(key.WithKeys("n", "q"))
	confirmCmd = func() tea.Msg { return ConfirmedMsg{} }
	reviewCmd  = func() tea.Msg { return ReviewSelectionMsg{} }
	cancelCmd  = func() tea.Msg { return CancelledMsg{} }
)

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keyLeft):
			m.cursor = (m.cursor + 2) % 3
		case key.Matches(msg, keyRight):
			m.cursor = (m.cursor + 1) % 3
		case key.Matches(msg, keyYes):
			return m, confirmCmd
		case key.Matches(msg, keyBack):
			return m, reviewCmd
		case key.Matches(msg, keyNo):
			return m, cancelCmd
		case key.Matches(msg, keyEnter):
			switch m.cursor {
			case buttonYes:
				return m, confirmCmd
			case buttonBack:
				return m, reviewCmd
			default:
				return m, cancelCmd
			}
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	b.WriteString(layout.SizeWarningBanner(m.width, m.height))

	title := "Confirm Deletion"
	if m.dryRun {
		title = "Confirm Dry Run"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	result := &scanner.ScanResult{Files: m.files}
	verb := "delete"
	if m.dryRun {
		verb = "simulate deleting"
	}
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("You are about to %s %s items (%s)",
		verb, utils.FormatCount(result.TotalCount()), utils.FormatBytes(result.TotalSize()))))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Breakdown:"))
	b.WriteString("\n")
	for _, s := range result.ByCategory() {
		fmt.Fprintf(&b, "  %-18s %6s items  %s\n",
			s.Category.DisplayName()+":",
			utils.FormatCount(s.Count),
			styles.FileSizeStyle.Render(utils.FormatBytes(s.Size)))
	}

	if largest := largestFiles(m.files, previewCount); len(largest) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Largest:"))
		b.WriteString("\n")
		pathWidth := max(m.width-20, 20)
		for _, f := range largest {
			path := layout.TruncatePath(layout.ShortenHome(f.Path, m.homeDir), pathWidth)
			fmt.Fprintf(&b, "  %s  %s\n",
				styles.FilePathStyle.Render(path),
				styles.FileSizeStyle.Render(utils.FormatBytes(f.Size)))
		}
	}

	b.WriteString("\n")
	b.WriteString("Risk Level: ")
	switch m.riskLevel {
	case RiskHigh:
		b.WriteString(styles.ErrorStyle.Render("HIGH (old downloads, old files or many items)"))
	case RiskMedium:
		b.WriteString(styles.WarningStyle.Render("MEDIUM (large files, duplicates or several categories)"))
	default:
		b.WriteString(styles.SuccessStyle.Render("LOW (caches, trash and temporary files)"))
	}
	b.WriteString("\n\n")

	if m.dryRun {
		b.WriteString(styles.DimStyle.Render("Dry run: nothing will be deleted."))
	} else {
		b.WriteString(styles.WarningStyle.Render("This action cannot be undone!"))
	}
	b.WriteString("\n\n")

	buttons := []string{"[ Yes, delete ]", "[ Back ]", "[ Cancel ]"}
	for i := range buttons {
		if i == m.cursor {
			buttons[i] = styles.HighlightStyle.Render(buttons[i])
		}
	}
	b.WriteString(strings.Join(buttons, "  "))
	b.WriteString("\n\n")

	help := "y:confirm  b:back  n:cancel  ←/→:navigate"
	if m.width < 60 {
		help = "y:yes  b:back  n:no"
	}
	b.WriteString(styles.HelpStyle.Render(help))

	return b.String()
}

// largestFiles returns up to n items ordered by size, largest first
func largestFiles(files []scanner.CleanableFile, n int) []scanner.CleanableFile {
	sorted := append([]scanner.CleanableFile(nil), files...)
	slices.SortStableFunc(sorted, func(a, b scanner.CleanableFile) int {
		return cmp.Compare(b.Size, a.Size)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
