package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/fretless/tabstash/internal/shared"
)

// Login authenticates with the identity provider and persists the session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	if err := r.tracker.Login(ctx, email, cmd.String("password")); err != nil {
		if errors.Is(err, shared.ErrAutoLogin) || errors.Is(err, shared.ErrValidation) {
			return err
		}
		return fmt.Errorf("login failed: %w", err)
	}

	r.logger.Info("logged in", "email", email)
	return r.writePlain("✓ Logged in as %s\n", email)
}

// Signup registers a new account. When the provider creates the account
// without a session, the tracker falls back to an immediate login with the
// same credentials.
func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")

	if err := r.tracker.Signup(ctx, email, cmd.String("password")); err != nil {
		if errors.Is(err, shared.ErrAutoLogin) {
			return fmt.Errorf("%w; run 'tabstash login' once confirmed", err)
		}
		return err
	}

	r.logger.Info("signed up", "email", email)
	return r.writePlain("✓ Signup successful, logged in as %s\n", email)
}

// Logout requests session termination. Always reports success; the local
// session is cleared regardless of the provider's answer.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	r.tracker.Logout(ctx)
	return r.writePlain("✓ Logged out\n")
}

// Whoami prints the restored session and role, or a logged-out notice.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.tracker.Init(ctx); err != nil {
		r.logger.Warnf("session restore failed: %v", err)
	}

	state := r.tracker.Current()
	if state.Session == nil {
		return r.writePlain("Not logged in\n")
	}

	role := "member"
	if state.IsAdmin {
		role = "admin"
	}
	return r.writePlain("%s (%s)\n", state.Session.Email, role)
}
