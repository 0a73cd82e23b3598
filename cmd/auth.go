package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/croonapp/croon/internal/auth"
	"github.com/croonapp/croon/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP callback server, opens the browser for user
// authorization, and exchanges the auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.auth.Config()
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("%w: run `croon setup credentials` first", shared.ErrMissingCredentials)
	}

	timeout := time.Duration(cmd.Int("timeout")) * time.Second

	flow := auth.NewFlow(r.auth, r.config.Server.Addr(), r.logger)
	flow.Notify = func(url string) {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		r.writePlain("If the browser does not open, visit:\n%s\n\n", url)
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)
	}

	if _, err := flow.Run(ctx, timeout); err != nil {
		switch {
		case errors.Is(err, shared.ErrPortUnavailable):
			r.writePlain("✗ %s is busy. Close whatever is using it or change the callback port.\n", r.config.Server.Addr())
		case errors.Is(err, shared.ErrAuthTimeout):
			r.writePlain("✗ Timed out waiting for authorization.\n")
		case errors.Is(err, shared.ErrAuthDenied):
			r.writePlain("✗ Authorization was denied.\n")
		}
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: croon play\n")

	return nil
}

// AuthLogout revokes stored tokens. Idempotent.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Revoke(); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	r.logger.Info("tokens revoked")
	r.writePlain("✓ Logged out\n")
	return nil
}

// AuthStatus checks the current authentication state without any interactive
// work.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	clientID, _ := r.auth.Credentials()
	if clientID == "" && r.auth.Config().ClientID == "" {
		r.writePlain("Credentials: ✗ Not configured (run `croon setup credentials`)\n")
	} else {
		r.writePlain("Credentials: ✓ Configured\n")
	}

	if r.auth.EnsureAuthenticated(ctx) {
		r.writePlain("Authentication: ✓ Authenticated\n")
	} else {
		r.writePlain("Authentication: ✗ Not authenticated (run `croon auth login`)\n")
	}

	return nil
}
