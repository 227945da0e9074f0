package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for uploads.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	r.SetLogger(fileLogger)

	bridge := &ui.Bridge{}
	files := r.newFileStore(bridge, bridge.Changed)

	if err := ui.Run(ctx, files, bridge); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
