package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/duster/internal/scanner"
)

// Theme colors
var (
	Primary   = lipgloss.Color("#7C3AED")
	Secondary = lipgloss.Color("#A78BFA")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Danger    = lipgloss.Color("#EF4444")
	Info      = lipgloss.Color("#3B82F6")
	Muted     = lipgloss.Color("#6B7280")
	Text      = lipgloss.Color("#F3F4F6")
	TextDim   = lipgloss.Color("#9CA3AF")
	Border    = lipgloss.Color("#4B5563")
	BgDark    = lipgloss.Color("#1F2937")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CheckboxStyle = lipgloss.NewStyle().
			Foreground(Success)

	CheckboxUncheckedStyle = lipgloss.NewStyle().
				Foreground(Muted)

	FilePathStyle = lipgloss.NewStyle().
			Foreground(Info)

	FileSizeStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(BgDark).
			Padding(0, 2)

	RecommendedBadgeStyle = lipgloss.NewStyle().
				Foreground(BgDark).
				Background(Success).
				Padding(0, 1)
)

// CheckedBox renders a ticked checkbox
func CheckedBox() string {
	return CheckboxStyle.Render("[x]")
}

// UncheckedBox renders an empty checkbox
func UncheckedBox() string {
	return CheckboxUncheckedStyle.Render("[ ]")
}

// ProgressBar renders a bar of width cells filled by current/total
func ProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}

	filled := min(current*width/total, width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(Primary).Render(bar)
}

// CategoryColor returns the accent color for a category
func CategoryColor(c scanner.Category) lipgloss.Color {
	switch c {
	case scanner.Cache, scanner.Temp, scanner.Trash:
		return Success
	case scanner.BuildArtifact:
		return Info
	case scanner.Duplicate, scanner.LargeFile:
		return Warning
	case scanner.Downloads, scanner.OldFile:
		return Danger
	default:
		return Muted
	}
}

// SafetyColor returns the color for a safety label such as "SAFE"
func SafetyColor(label string) lipgloss.Color {
	switch label {
	case "SAFE":
		return Success
	case "CAUTION":
		return Warning
	case "RISKY":
		return Danger
	default:
		return Muted
	}
}

// SizeColor grades a byte count from dim to loud
func SizeColor(size int64) lipgloss.Color {
	switch {
	case size >= 1<<30:
		return Danger
	case size >= 100<<20:
		return Warning
	case size >= 1<<20:
		return Info
	default:
		return TextDim
	}
}
