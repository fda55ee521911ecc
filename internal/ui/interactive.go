package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/duster/internal/ui/models"
)

// Selection is what the user chose in interactive mode
type Selection = models.Selection

// RunInteractive scans with scan, lets the user pick categories and confirm,
// and returns the choice. A quit or cancel returns a Selection with
// Confirmed false and no error.
func RunInteractive(ctx context.Context, scan models.ScanFunc, opts ...models.AppOption) (Selection, error) {
	m := models.NewAppModel(ctx, scan, opts...)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Selection{}, ctx.Err()
		}
		return Selection{}, fmt.Errorf("error running interactive mode: %w", err)
	}

	app, ok := final.(*models.AppModel)
	if !ok {
		return Selection{}, fmt.Errorf("unexpected model type %T", final)
	}
	return app.Selection(), nil
}
