package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/duster/internal/progress"
	"github.com/fenilsonani/duster/internal/scanner"
)

// ViewState represents the current view in the app
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewCategorySelection
	ViewConfirmation
	ViewDone
)

// ScanFunc produces the result the user picks from. It may return a cached
// result immediately.
type ScanFunc func(ctx context.Context) *scanner.ScanResult

// Selection is what the interactive flow hands back to the caller
type Selection struct {
	Result     *scanner.ScanResult
	Categories []scanner.Category
	Files      []scanner.CleanableFile
	Confirmed  bool
}

// AppModel is the root model for the interactive TUI
type AppModel struct {
	state ViewState

	ctx      context.Context
	cancel   context.CancelFunc
	scan     ScanFunc
	progress *progress.ProgressReporter
	homeDir  string
	dryRun   bool

	result    *scanner.ScanResult
	selection Selection

	scanView     *ScanViewModel
	categoryView *CategoryViewModel
	confirmView  *ConfirmViewModel

	width  int
	height int
}

// AppOption configures an AppModel
type AppOption func(*AppModel)

// WithProgress shows live scan progress from reporter
func WithProgress(reporter *progress.ProgressReporter) AppOption {
	return func(m *AppModel) {
		m.progress = reporter
	}
}

// WithHomeDir shortens paths under home to "~"
func WithHomeDir(home string) AppOption {
	return func(m *AppModel) {
		m.homeDir = home
	}
}

// WithDryRun labels the confirmation as a simulation
func WithDryRun(dryRun bool) AppOption {
	return func(m *AppModel) {
		m.dryRun = dryRun
	}
}

// NewAppModel creates a new app model
func NewAppModel(ctx context.Context, scan ScanFunc, opts ...AppOption) *AppModel {
	ctx, cancel := context.WithCancel(ctx)
	m := &AppModel{
		state:  ViewScanning,
		ctx:    ctx,
		cancel: cancel,
		scan:   scan,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.scanView = NewScanViewModel(ctx, scan, m.progress)
	return m
}

// Selection returns what the user chose. Confirmed is false when the user
// quit or cancelled.
func (m *AppModel) Selection() Selection {
	return m.selection
}

// State returns the active view
func (m *AppModel) State() ViewState {
	return m.state
}

// Init starts scanning immediately
func (m *AppModel) Init() tea.Cmd {
	return m.scanView.Init()
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "q":
			if m.state != ViewConfirmation {
				return m.quit()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScanCompleteMsg:
		m.result = msg.Result
		if m.result == nil {
			m.result = &scanner.ScanResult{}
		}
		m.selection.Result = m.result
		m.scanView.finish(m.result)
		m.categoryView = NewCategoryViewModel(m.result, m.width, m.height)
		m.state = ViewCategorySelection
		return m, nil

	case CategoriesSelectedMsg:
		files := m.result.Filter(msg.Categories...).Files
		m.selection.Categories = msg.Categories
		m.selection.Files = files
		m.confirmView = NewConfirmViewModel(files, m.width, m.height, m.homeDir, m.dryRun)
		m.state = ViewConfirmation
		return m, nil

	case ConfirmedMsg:
		m.selection.Confirmed = true
		m.state = ViewDone
		return m, tea.Quit

	case ReviewSelectionMsg:
		m.state = ViewCategorySelection
		return m, nil

	case CancelledMsg:
		return m.quit()
	}

	return m.delegateUpdate(msg)
}

func (m *AppModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.selection.Confirmed = false
	m.state = ViewDone
	return m, tea.Quit
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewScanning:
		m.scanView, cmd = m.scanView.Update(msg)
	case ViewCategorySelection:
		if m.categoryView != nil {
			m.categoryView, cmd = m.categoryView.Update(msg)
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	switch m.state {
	case ViewScanning:
		return m.scanView.View()
	case ViewCategorySelection:
		if m.categoryView != nil {
			return m.categoryView.View()
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewDone:
		return ""
	}

	return "Loading..."
}

// ScanCompleteMsg carries the finished scan
type ScanCompleteMsg struct {
	Result *scanner.ScanResult
}

// CategoriesSelectedMsg moves from the picker to the confirmation
type CategoriesSelectedMsg struct {
	Categories []scanner.Category
}

type ConfirmedMsg struct{}

// ReviewSelectionMsg returns from the confirmation to the picker
type ReviewSelectionMsg struct{}

type CancelledMsg struct{}
