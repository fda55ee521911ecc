package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/duster/internal/ui/styles"
	"github.com/fenilsonani/duster/pkg/utils"
)

// StatusBar is the one-line footer under each view
type StatusBar struct {
	viewName string
	selected int
	total    int
	size     int64
	hint     string
}

// NewStatusBar creates an empty status bar
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetView sets the current view name
func (s *StatusBar) SetView(viewName string) {
	s.viewName = viewName
}

// SetSelection sets the selection count, total, and size
func (s *StatusBar) SetSelection(selected, total int, size int64) {
	s.selected = selected
	s.total = total
	s.size = size
}

// SetHint sets the right-aligned text, usually rendered key help
func (s *StatusBar) SetHint(hint string) {
	s.hint = hint
}

// Render renders the status bar with the given width
func (s *StatusBar) Render(width int) string {
	if width <= 0 {
		width = 80
	}

	var parts []string
	if s.viewName != "" {
		parts = append(parts, styles.BoldStyle.Render(s.viewName))
	}
	if s.total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d selected", s.selected, s.total))
	}
	if s.size > 0 {
		parts = append(parts, styles.FileSizeStyle.Render(utils.FormatBytes(s.size)))
	}

	left := strings.Join(parts, " • ")
	right := s.hint

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	spacing := width - leftLen - rightLen - 2
	if spacing < 1 {
		right = ""
		spacing = max(width-leftLen-2, 1)
	}

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.BgDark).
		Padding(0, 1).
		Width(width).
		Render(left + strings.Repeat(" ", spacing) + right)
}

// RenderSimple renders a status bar holding only message
func RenderSimple(message string, width int) string {
	if width <= 0 {
		width = 80
	}

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.BgDark).
		Padding(0, 1).
		Width(width).
		Render(message)
}
