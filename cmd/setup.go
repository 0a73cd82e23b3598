package main

import (
	"context"
	"fmt"

	"github.com/croonapp/croon/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupCredentials stores the Spotify application client id and secret in the
// credential store.
func (r *Runner) SetupCredentials(ctx context.Context, cmd *cli.Command) error {
	clientID := cmd.String("client-id")
	clientSecret := cmd.String("client-secret")

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: client-id and client-secret are required", shared.ErrMissingCredentials)
	}

	if err := r.auth.StoreCredentials(clientID, clientSecret); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	// Make the credentials effective for this invocation too.
	r.auth.Config().ClientID = clientID
	r.auth.Config().ClientSecret = clientSecret

	r.logger.Info("credentials stored")
	r.writePlain("✓ Credentials stored\n")
	r.writePlain("Next: run `croon auth login`\n")

	return nil
}

// SetupConfig creates a config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config file created at %s\n", configPath)
	return nil
}

// SetupReset forgets stored credentials and tokens.
func (r *Runner) SetupReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Revoke(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	if err := r.auth.ForgetCredentials(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	r.logger.Info("credentials and tokens cleared")
	r.writePlain("✓ Stored credentials and tokens cleared\n")
	return nil
}
