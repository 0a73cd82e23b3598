package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/croonapp/croon/internal/shared"
	"github.com/croonapp/croon/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Playlists lists the current user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	var playlists []spotify.SimplePlaylist
	offset := 0
	for {
		page, err := r.client.UserPlaylists(ctx, 50, offset)
		if err != nil {
			return r.reportError(err)
		}

		playlists = append(playlists, page.Items...)
		if page.Next == nil || (limit > 0 && len(playlists) >= limit) {
			break
		}
		offset += 50
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.Tracks.Total)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// PlaylistsCreate creates a new playlist for the current user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: a playlist name is required", shared.ErrMissingArgument)
	}

	playlist, err := r.client.CreatePlaylist(ctx, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return r.reportError(err)
	}

	r.logger.Info("playlist created", "id", playlist.ID)
	r.writePlain("✓ Playlist created: %s\n", playlist.Name)
	r.writePlain("  ID: %s\n", playlist.ID)
	r.writePlain("  URI: %s\n", playlist.URI)

	return nil
}

// PlaylistsAdd appends tracks to an existing playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	uris := cmd.StringSlice("uri")

	if err := r.client.AddTracksToPlaylist(ctx, playlistID, uris); err != nil {
		return r.reportError(err)
	}

	r.writePlain("✓ Added %d tracks to playlist %s\n", len(uris), playlistID)
	return nil
}

// PlaylistsTracks lists the tracks in a playlist.
func (r *Runner) PlaylistsTracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")

	page, err := r.client.PlaylistTracks(ctx, playlistID, cmd.Int("limit"), 0)
	if err != nil {
		return r.reportError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlain("Tracks: %d\n\n", page.Total)
	for i, item := range page.Items {
		artist := ""
		if len(item.Track.Artists) > 0 {
			artist = item.Track.Artists[0].Name
		}
		r.writePlain("%d. %s - %s\n", i+1, artist, item.Track.Name)
	}

	return nil
}

// Search queries the Spotify catalog.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	types := strings.Split(cmd.String("type"), ",")

	result, err := r.client.Search(ctx, query, types, cmd.Int("limit"))
	if err != nil {
		return r.reportError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if len(result.Tracks.Items) > 0 {
		r.writePlain("Tracks:\n")
		for i, track := range result.Tracks.Items {
			artist := ""
			if len(track.Artists) > 0 {
				artist = track.Artists[0].Name
			}
			r.writePlain("%d. %s - %s\n   URI: %s\n", i+1, artist, track.Name, track.URI)
		}
	}

	if len(result.Artists.Items) > 0 {
		r.writePlain("Artists:\n")
		for i, artist := range result.Artists.Items {
			r.writePlain("%d. %s\n   URI: %s\n", i+1, artist.Name, artist.URI)
		}
	}

	if len(result.Albums.Items) > 0 {
		r.writePlain("Albums:\n")
		for i, album := range result.Albums.Items {
			r.writePlain("%d. %s\n   URI: %s\n", i+1, album.Name, album.URI)
		}
	}

	if len(result.Playlists.Items) > 0 {
		r.writePlain("Playlists:\n")
		for i, playlist := range result.Playlists.Items {
			r.writePlain("%d. %s\n   URI: %s\n", i+1, playlist.Name, playlist.URI)
		}
	}

	return nil
}

// Recent shows the user's recently played tracks.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	recent, err := r.client.RecentlyPlayed(ctx, cmd.Int("limit"))
	if err != nil {
		return r.reportError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(recent, true)
	}

	if len(recent.Items) == 0 {
		r.writePlain("No recently played tracks.\n")
		return nil
	}

	r.writePlain("Recently played:\n\n")
	for i, item := range recent.Items {
		artist := ""
		if len(item.Track.Artists) > 0 {
			artist = item.Track.Artists[0].Name
		}
		r.writePlain("%d. %s - %s\n", i+1, artist, item.Track.Name)
		if item.PlayedAt != "" {
			r.writePlain("   Played: %s\n", item.PlayedAt)
		}
	}

	return nil
}
