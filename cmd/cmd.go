// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "Target device ID",
	}
}

// setupCommand handles credential and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Configure Spotify application credentials",
		Commands: []*cli.Command{
			{
				Name:  "credentials",
				Usage: "Store Spotify client id and secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Usage:    "Spotify application client ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "client-secret",
						Usage:    "Spotify application client secret",
						Required: true,
					},
				},
				Action: r.SetupCredentials,
			},
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "reset",
				Usage:  "Forget stored credentials and tokens",
				Action: r.SetupReset,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Seconds to wait for the browser callback",
						Value: 120,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Revoke stored tokens",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Start or resume playback (accepts a Spotify URI or preset name)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "uri"},
		},
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Play,
	}
}

func pauseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "pause",
		Usage:  "Pause playback",
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Pause,
	}
}

func nextCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "next",
		Usage:  "Skip to the next track",
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Next,
	}
}

func prevCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prev",
		Aliases: []string{"previous"},
		Usage:   "Skip to the previous track",
		Flags:   []cli.Flag{deviceFlag()},
		Action:  r.Previous,
	}
}

func volumeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "volume",
		Usage: "Set playback volume (0-100)",
		Arguments: []cli.Argument{
			&cli.IntArg{Name: "level"},
		},
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Volume,
	}
}

func shuffleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "Toggle shuffle mode (on|off)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "state"},
		},
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Shuffle,
	}
}

func currentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "current",
		Usage: "Show the currently playing track",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
		},
		Action: r.Current,
	}
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List available playback devices",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Devices,
		Commands: []*cli.Command{
			{
				Name:  "transfer",
				Usage: "Transfer playback to another device",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "play", Usage: "Start playback after transfer"},
				},
				Action: r.DevicesTransfer,
			},
		},
	}
}

func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Add a track to the playback queue",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "uri"},
		},
		Flags:  []cli.Flag{deviceFlag()},
		Action: r.Queue,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List and manage playlists",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of playlists to return", Value: 50},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
		},
		Action: r.Playlists,
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make playlist public"},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "add",
				Usage: "Add tracks to an existing playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.StringSliceFlag{Name: "uri", Usage: "Track URI to add (repeatable)", Required: true},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "tracks",
				Usage: "List tracks in a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of tracks to return", Value: 50},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistsTracks,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Comma-separated result types (track,artist,album,playlist)", Value: "track"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: 10},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Search,
	}
}

func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Number of entries to show", Value: 20},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Recent,
	}
}
