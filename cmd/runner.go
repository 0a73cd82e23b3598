package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/croonapp/croon/internal/auth"
	"github.com/croonapp/croon/internal/shared"
	"github.com/croonapp/croon/internal/spotify"
	"github.com/croonapp/croon/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	store  store.Store
	auth   *auth.Manager
	client *spotify.Client
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Store  store.Store
	Auth   *auth.Manager
	Client *spotify.Client
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		store:  opts.Store,
		auth:   opts.Auth,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playCommand, pauseCommand, nextCommand, prevCommand,
		volumeCommand, shuffleCommand, currentCommand, devicesCommand, queueCommand,
		playlistsCommand, searchCommand, recentCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// remedialHint returns user-facing guidance for the API error taxonomy.
// Each failure class implies a different remedial action.
func remedialHint(err error) string {
	var rateErr *spotify.RateLimitError

	switch {
	case errors.Is(err, shared.ErrNoActiveDevice):
		return "Open Spotify on a device and try again, or run `croon devices`."
	case errors.Is(err, shared.ErrPremiumRequired):
		return "This action requires a Spotify Premium subscription."
	case errors.Is(err, shared.ErrActionNotPermitted):
		return "Spotify is already in the requested state."
	case errors.As(err, &rateErr):
		return fmt.Sprintf("Rate limited. Try again in %d seconds.", rateErr.RetryAfter)
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "Not authenticated. Run `croon auth login`."
	case errors.Is(err, shared.ErrTokenExpired):
		return "Your session was revoked. Run `croon auth login` to re-authenticate."
	}
	return ""
}

// reportError prints a remedial hint when one exists and returns the error
// for the CLI host to surface.
func (r *Runner) reportError(err error) error {
	if hint := remedialHint(err); hint != "" {
		r.writePlain("%s\n", hint)
	}
	return err
}
