package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/desertthunder/ytassist/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "ytassist-tui.log"

// TUI launches the interactive terminal UI for playlist creation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logCfg := r.config.Log
	if logCfg.File == "" {
		logCfg.File = defaultTUILog
	}
	r.SetLogger(shared.NewConfiguredLogger(logCfg))

	var history ui.HistorySource
	if repo, err := r.runHistory(ctx); err != nil {
		r.logger.Warn("history unavailable", "error", err)
	} else {
		history = repo
	}

	model := ui.NewModel(ctx, r.orchestrator(ctx, true), history)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
