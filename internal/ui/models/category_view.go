package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/duster/internal/scanner"
	"github.com/fenilsonani/duster/internal/ui/components"
	"github.com/fenilsonani/duster/internal/ui/layout"
	"github.com/fenilsonani/duster/internal/ui/styles"
	"github.com/fenilsonani/duster/pkg/utils"
)

// SafetyLevel represents the safety level of a category
type SafetyLevel int

const (
	SafetyLow SafetyLevel = iota
	SafetyMedium
	SafetyHigh
)

func (s SafetyLevel) String() string {
	switch s {
	case SafetyHigh:
		return "SAFE"
	case SafetyMedium:
		return "CAUTION"
	case SafetyLow:
		return "RISKY"
	default:
		return "UNKNOWN"
	}
}

// CategorySafety returns how safe a category is to delete and whether it
// starts selected
func CategorySafety(c scanner.Category) (SafetyLevel, bool) {
	switch c {
	case scanner.Cache, scanner.Trash, scanner.Temp:
		return SafetyHigh, true
	case scanner.BuildArtifact:
		return SafetyMedium, true
	case scanner.Duplicate, scanner.LargeFile:
		return SafetyMedium, false
	default:
		return SafetyLow, false
	}
}

// CategoryItem represents a selectable category
type CategoryItem struct {
	Category    scanner.Category
	Count       int
	Size        int64
	Selected    bool
	SafetyLevel SafetyLevel
}

type categoryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
	Help    key.Binding
}

func (k categoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Confirm, k.Quit, k.Help}
}

func (k categoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.All, k.None},
		{k.Confirm, k.Quit, k.Help},
	}
}

var categoryKeys = categoryKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a", "ctrl+a"), key.WithHelp("a", "select all")),
	None:    key.NewBinding(key.WithKeys("d", "ctrl+d"), key.WithHelp("d", "select none")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
}

// CategoryViewModel handles category selection
type CategoryViewModel struct {
	categories []CategoryItem
	cursor     int
	keys       categoryKeyMap
	help       help.Model
	notice     string
	width      int
	height     int
}

// NewCategoryViewModel lists the non-empty categories of result, with the
// safe ones preselected
func NewCategoryViewModel(result *scanner.ScanResult, width, height int) *CategoryViewModel {
	var categories []CategoryItem
	for _, s := range result.ByCategory() {
		level, selected := CategorySafety(s.Category)
		categories = append(categories, CategoryItem{
			Category:    s.Category,
			Count:       s.Count,
			Size:        s.Size,
			Selected:    selected,
			SafetyLevel: level,
		})
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &CategoryViewModel{
		categories: categories,
		keys:       categoryKeys,
		help:       help.New(),
		width:      width,
		height:     height,
	}
}

// Items returns the listed categories in display order
func (m *CategoryViewModel) Items() []CategoryItem {
	return m.categories
}

// Selected returns the categories currently ticked
func (m *CategoryViewModel) Selected() []scanner.Category {
	var selected []scanner.Category
	for _, c := range m.categories {
		if c.Selected {
			selected = append(selected, c.Category)
		}
	}
	return selected
}

// Update handles messages
func (m *CategoryViewModel) Update(msg tea.Msg) (*CategoryViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		m.notice = ""
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.categories)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if m.cursor < len(m.categories) {
				m.categories[m.cursor].Selected = !m.categories[m.cursor].Selected
			}
		case key.Matches(msg, m.keys.All):
			m.setAll(true)
		case key.Matches(msg, m.keys.None):
			m.setAll(false)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Quit):
			return m, func() tea.Msg { return CancelledMsg{} }
		case key.Matches(msg, m.keys.Confirm):
			if len(m.categories) == 0 {
				return m, func() tea.Msg { return CancelledMsg{} }
			}
			selected := m.Selected()
			if len(selected) == 0 {
				m.notice = "Select at least one category"
				return m, nil
			}
			return m, func() tea.Msg { return CategoriesSelectedMsg{Categories: selected} }
		}
	}

	return m, nil
}

func (m *CategoryViewModel) setAll(selected bool) {
	for i := range m.categories {
		m.categories[i].Selected = selected
	}
}

// View renders the category selection view
func (m *CategoryViewModel) View() string {
	var b strings.Builder

	b.WriteString(layout.SizeWarningBanner(m.width, m.height))
	b.WriteString(styles.TitleStyle.Render("Select Categories to Clean"))
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(styles.SuccessStyle.Render("Nothing to clean."))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("Press enter or q to exit"))
		return b.String()
	}

	var selectedCount, selectedCats int
	var selectedSize int64

	start, end := layout.Window(m.cursor, len(m.categories), layout.PageSize(m.height))
	for i := start; i < end; i++ {
		cat := m.categories[i]

		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("> ")
		}

		checkbox := styles.UncheckedBox()
		if cat.Selected {
			checkbox = styles.CheckedBox()
		}

		name := lipgloss.NewStyle().Foreground(styles.CategoryColor(cat.Category)).Bold(true).
			Render(fmt.Sprintf("%-16s", cat.Category.DisplayName()))
		safety := lipgloss.NewStyle().Foreground(styles.SafetyColor(cat.SafetyLevel.String())).
			Render(fmt.Sprintf("%-7s", cat.SafetyLevel))
		size := lipgloss.NewStyle().Foreground(styles.SizeColor(cat.Size)).Bold(true).
			Render(utils.FormatBytes(cat.Size))

		fmt.Fprintf(&b, "%s%s %s %s %s items, %s\n",
			cursor, checkbox, name, safety,
			styles.DimStyle.Render(utils.FormatCount(cat.Count)), size)

		if i == m.cursor && m.width >= 100 {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextDim).Italic(true).MarginLeft(6).
				Render(cat.Category.Description()))
			b.WriteString("\n")
		}
	}

	for _, cat := range m.categories {
		if cat.Selected {
			selectedCats++
			selectedCount += cat.Count
			selectedSize += cat.Size
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Selected: %s items, %s",
		utils.FormatCount(selectedCount), utils.FormatBytes(selectedSize))))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(styles.WarningStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	statusBar := components.NewStatusBar()
	statusBar.SetView("Categories")
	statusBar.SetSelection(selectedCats, len(m.categories), selectedSize)
	b.WriteString(statusBar.Render(m.width))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
