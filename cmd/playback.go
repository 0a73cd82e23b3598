package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/croonapp/croon/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts or resumes playback. The optional argument is a Spotify URI or
// a preset name from the config file; with no argument, playback resumes.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	deviceID := cmd.String("device")

	if preset, ok := r.config.Presets[uri]; ok && uri != "" {
		r.logger.Info("resolved preset", "name", uri, "uri", preset)
		uri = preset
	}

	if err := r.client.Play(ctx, uri, deviceID); err != nil {
		return r.reportError(err)
	}

	if uri != "" {
		r.writePlain("▶ Playing %s\n", uri)
	} else {
		r.writePlain("▶ Playback resumed\n")
	}
	return nil
}

// Pause pauses playback.
func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.Pause(ctx, cmd.String("device")); err != nil {
		return r.reportError(err)
	}
	r.writePlain("⏸ Playback paused\n")
	return nil
}

// Next skips to the next track.
func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.SkipToNext(ctx, cmd.String("device")); err != nil {
		return r.reportError(err)
	}
	r.writePlain("⏭ Skipped to next track\n")
	return nil
}

// Previous skips to the previous track.
func (r *Runner) Previous(ctx context.Context, cmd *cli.Command) error {
	if err := r.client.SkipToPrevious(ctx, cmd.String("device")); err != nil {
		return r.reportError(err)
	}
	r.writePlain("⏮ Skipped to previous track\n")
	return nil
}

// Volume sets the playback volume. Out-of-range values are clamped by the
// client before being sent.
func (r *Runner) Volume(ctx context.Context, cmd *cli.Command) error {
	level := cmd.IntArg("level")

	if err := r.client.SetVolume(ctx, level, cmd.String("device")); err != nil {
		return r.reportError(err)
	}

	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	r.writePlain("🔊 Volume set to %d%%\n", level)
	return nil
}

// Shuffle toggles shuffle mode.
func (r *Runner) Shuffle(ctx context.Context, cmd *cli.Command) error {
	var shuffle bool
	switch strings.ToLower(cmd.StringArg("state")) {
	case "on", "true", "1":
		shuffle = true
	case "off", "false", "0":
		shuffle = false
	default:
		return fmt.Errorf("%w: shuffle state must be on or off", shared.ErrInvalidArgument)
	}

	if err := r.client.SetShuffle(ctx, shuffle, cmd.String("device")); err != nil {
		return r.reportError(err)
	}

	if shuffle {
		r.writePlain("🔀 Shuffle on\n")
	} else {
		r.writePlain("🔀 Shuffle off\n")
	}
	return nil
}

// Current shows the currently playing track.
func (r *Runner) Current(ctx context.Context, cmd *cli.Command) error {
	state, err := r.client.CurrentTrack(ctx)
	if err != nil {
		return r.reportError(err)
	}

	if state == nil || state.Item == nil {
		r.writePlain("Nothing is playing right now.\n")
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	track := state.Item
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	status := "⏸"
	if state.IsPlaying {
		status = "▶"
	}

	r.writePlain("%s %s - %s\n", status, artist, track.Name)
	if track.Album.Name != "" {
		r.writePlain("   Album: %s\n", track.Album.Name)
	}
	if track.DurationMS > 0 {
		r.writePlain("   Progress: %s / %s\n", formatDuration(state.ProgressMS), formatDuration(track.DurationMS))
	}

	return nil
}

// Queue adds a track to the playback queue.
func (r *Runner) Queue(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: a track URI is required", shared.ErrMissingArgument)
	}

	if err := r.client.AddToQueue(ctx, uri, cmd.String("device")); err != nil {
		return r.reportError(err)
	}

	r.writePlain("✓ Added to queue: %s\n", uri)
	return nil
}

func formatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
