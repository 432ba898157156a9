package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/formatter"
	"github.com/fretless/tabstash/internal/shared"
	"github.com/fretless/tabstash/internal/tabs"
)

// requireSession restores the persisted session and fails when logged out.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.tracker.Init(ctx); err != nil {
		r.logger.Warnf("session restore failed: %v", err)
	}
	if r.tracker.Current().Session == nil {
		return fmt.Errorf("%w: please log in or sign up to view guitar tabs", shared.ErrNotAuthenticated)
	}
	return nil
}

// TabsList fetches the collection and prints it, optionally filtered.
func (r *Runner) TabsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if err := r.collection.Refresh(ctx); err != nil {
		return fmt.Errorf("error loading tabs, try again: %w", err)
	}

	collection := tabs.Filter(r.collection.Snapshot(), cmd.String("search"))

	if cmd.Bool("json") {
		return r.writeJSON(collection, cmd.Bool("pretty"))
	}

	if len(collection) == 0 {
		if query := cmd.String("search"); query != "" {
			return r.writePlain("No tabs found matching %q.\n", query)
		}
		return r.writePlain("No tabs found.\n")
	}

	for i, tab := range collection {
		if err := r.writePlain("%d. %s\n", i+1, formatter.SummaryLine(tab)); err != nil {
			return err
		}
	}
	return nil
}

// TabsAdd validates and submits a new tab, then reports the refreshed count.
func (r *Runner) TabsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if !r.tracker.Current().IsAdmin {
		return fmt.Errorf("%w: only admins can add tabs", shared.ErrForbidden)
	}

	content := cmd.String("content")
	if path := cmd.String("file"); path != "" {
		data, err := readContent(path)
		if err != nil {
			return err
		}
		content = data
	}

	if err := r.submitter.Submit(ctx, cmd.String("title"), cmd.String("artist"), cmd.String("tuning"), content); err != nil {
		return err
	}

	r.logger.Info("tab added", "title", cmd.String("title"), "artist", cmd.String("artist"))
	return r.writePlain("✓ Tab added (%d tabs total)\n", len(r.collection.Snapshot()))
}

// TabsExport writes the collection to a file in the requested format.
func (r *Runner) TabsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	if err := r.collection.Refresh(ctx); err != nil {
		return fmt.Errorf("error loading tabs, try again: %w", err)
	}

	format := cmd.String("format")
	output := cmd.String("output")
	if err := formatter.WriteExport(r.collection.Snapshot(), format, output); err != nil {
		return err
	}

	return r.writePlain("✓ Exported %d tabs to %s\n", len(r.collection.Snapshot()), output)
}

// readContent reads tab content from a file path or stdin when path is "-".
func readContent(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read content file: %w", err)
	}
	return string(data), nil
}
