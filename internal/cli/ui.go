package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/logsift/internal/resultset"
	"github.com/vburojevic/logsift/internal/tui"
)

// UICmd browses the records of a query in a terminal UI
type UICmd struct {
	Query `embed:""`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if !globals.Styled || !interactive {
		return emitError(globals, usageError(CodeNotInteractive,
			"logsift ui requires an interactive terminal",
			"Use 'logsift search' for scripting"))
	}
	if c.Source == "-" {
		return emitError(globals, usageError(CodeNotInteractive,
			"logsift ui reads keys from stdin, so it cannot search stdin", "Save the log to a file first"))
	}

	p, err := c.Query.prepare(ctx, globals)
	if err != nil {
		return emitError(globals, err)
	}
	rs, err := p.results(ctx)
	if err != nil {
		return emitError(globals, err)
	}

	model := tui.New(rs, tui.Options{
		Title:         p.engine.Source().String(),
		SeverityField: globals.Config.SeverityField,
		Scale:         globals.Config.Scale(),
		// Each refresh re-reads the source, so a growing file shows new lines
		Refresh: func() (*resultset.ResultSet, error) {
			return p.results(ctx)
		},
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
