package main

import (
	"context"
	"fmt"

	"github.com/croonapp/croon/internal/shared"
	"github.com/urfave/cli/v3"
)

// Devices lists the user's available playback devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	devices, err := r.client.Devices(ctx)
	if err != nil {
		return r.reportError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}

	if len(devices) == 0 {
		r.writePlain("No devices found. Open Spotify on a device first.\n")
		return nil
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		marker := " "
		if d.IsActive {
			marker = "●"
		}
		r.writePlain("%s %d. %s (%s)\n", marker, i+1, d.Name, d.Type)
		r.writePlain("     ID: %s\n", d.ID)
		r.writePlain("     Volume: %d%%\n", d.VolumePercent)
	}

	return nil
}

// DevicesTransfer moves playback to the specified device.
func (r *Runner) DevicesTransfer(ctx context.Context, cmd *cli.Command) error {
	deviceID := cmd.StringArg("id")
	if deviceID == "" {
		return fmt.Errorf("%w: a device ID is required", shared.ErrMissingArgument)
	}

	if err := r.client.TransferPlayback(ctx, deviceID, cmd.Bool("play")); err != nil {
		return r.reportError(err)
	}

	r.writePlain("✓ Playback transferred to %s\n", deviceID)
	return nil
}
