package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the TUI and compresses files one after another. The returned
// error joins every per-file failure so callers can still inspect them with
// errors.As.
func Run(ctx context.Context, files []string, opts Options) error {
	m := NewModel(ctx, files, opts)
	defer m.cancel()

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return err
	}
	fm, ok := final.(Model)
	if !ok {
		return nil
	}
	return fm.failures()
}

func (m Model) failures() error {
	var errs []error
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js != nil && js.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", js.path, js.err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d file(s) failed:\n%w", len(errs), errors.Join(errs...))
}
