package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/store/query"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Run starts the interactive list on the alt screen and blocks until
// the user quits or ctx is cancelled.
func Run(ctx context.Context, cache *query.Cache, opts Options) error {
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = ui.TermSize()
	}
	m := New(ctx, cache, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
