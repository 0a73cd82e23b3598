package main

import (
	"context"
	"os"

	"github.com/croonapp/croon/internal/auth"
	"github.com/croonapp/croon/internal/shared"
	"github.com/croonapp/croon/internal/spotify"
	"github.com/croonapp/croon/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	db, err := store.Open(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open credential store: %v", err)
	}
	defer db.Close()

	store.Configure(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := store.Migrate(db); err != nil {
		logger.Fatalf("failed to migrate credential store: %v", err)
	}

	credentials := store.NewSQLiteStore(db)

	spotifyConf := config.Credentials.Spotify
	oauthConfig := auth.NewOAuthConfig(spotifyConf.ClientID, spotifyConf.ClientSecret, spotifyConf.RedirectURI, spotifyConf.Scopes)
	manager := auth.NewManager(credentials, oauthConfig, logger)

	// Credentials stored via `croon setup` win over config file values.
	if id, secret := manager.Credentials(); id != "" && secret != "" {
		oauthConfig.ClientID = id
		oauthConfig.ClientSecret = secret
	}
	client := spotify.NewClient(manager, nil, logger)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Store:  credentials,
		Auth:   manager,
		Client: client,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "croon",
		Usage:    "Control Spotify playback from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
