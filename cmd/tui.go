package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/session"
	"github.com/fretless/tabstash/internal/shared"
	"github.com/fretless/tabstash/internal/tabs"
	"github.com/fretless/tabstash/internal/ui"
)

// TUI launches the interactive terminal UI over the shared tab repository.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Logging.TUILogPath
	if logPath == "" {
		logPath = "./tmp/tabstash-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	// The TUI tracker carries the full cascade: role check, visibility,
	// collection refresh on login, cache clear on logout.
	collection := tabs.NewCollection(r.store)
	authz := session.NewAuthorizer(r.store, fileLogger)
	tracker := session.NewTracker(r.provider, authz, collection, fileLogger)
	submitter := tabs.NewSubmitter(r.store, collection, fileLogger)

	model := ui.NewModel(ctx, tracker, collection, submitter)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
