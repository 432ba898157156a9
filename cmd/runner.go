package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/services"
	"github.com/fretless/tabstash/internal/session"
	"github.com/fretless/tabstash/internal/shared"
	"github.com/fretless/tabstash/internal/tabs"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	provider   services.AuthProvider
	store      services.TabStore
	logger     *log.Logger
	output     io.Writer
	tracker    *session.Tracker
	collection *tabs.Collection
	submitter  *tabs.Submitter
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Provider services.AuthProvider
	Store    services.TabStore
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	collection := tabs.NewCollection(opts.Store)
	authz := session.NewAuthorizer(opts.Store, opts.Logger)
	// CLI commands fetch explicitly, so the one-shot tracker carries no
	// collection; the TUI wires its own tracker with the refresh cascade.
	tracker := session.NewTracker(opts.Provider, authz, nil, opts.Logger)
	submitter := tabs.NewSubmitter(opts.Store, collection, opts.Logger)

	return &Runner{
		config:     opts.Config,
		provider:   opts.Provider,
		store:      opts.Store,
		logger:     opts.Logger,
		output:     opts.Output,
		tracker:    tracker,
		collection: collection,
		submitter:  submitter,
	}
}

// SetLogger swaps the runner's logger; used by the TUI to redirect log
// output to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, signupCommand, logoutCommand, whoamiCommand, tabsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
