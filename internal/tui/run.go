package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tasknova/internal/logging"
)

// Run shows the interactive client until the user quits or ctx is done.
// The task bridge follows the session for as long as the client runs.
func Run(ctx context.Context, opts Options) error {
	if opts.Auth == nil || opts.Session == nil || opts.Tasks == nil {
		return errors.New("tui: missing dependencies")
	}
	logger := logging.OrNop(opts.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := opts.Tasks.Follow(ctx, opts.Session); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("task subscription ended", zap.Error(err))
		}
	}()

	m := newModel(ctx, opts)
	defer m.Close()

	popts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.In != nil {
		popts = append(popts, tea.WithInput(opts.In))
	}
	if opts.Out != nil {
		popts = append(popts, tea.WithOutput(opts.Out))
	}

	if _, err := tea.NewProgram(m, popts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
