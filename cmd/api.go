package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/borrowx/internal/formatter"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIHeartbeat checks that the upload API is reachable.
func (r *Runner) APIHeartbeat(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("HEAD request", "path", "/heartbeat")

	if err := r.api.Heartbeat(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ %s is up\n", r.config.Client.APIURL)
}

// APIOperation prints the state of an operation.
func (r *Runner) APIOperation(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if !shared.IsID(id) {
		return fmt.Errorf("%w: %q is not an operation ID", shared.ErrInvalidArgument, id)
	}

	op, err := r.api.Operation(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(op, true)
}

// APIBorrowings prints the stored borrowing table of a video.
func (r *Runner) APIBorrowings(ctx context.Context, cmd *cli.Command) error {
	records, err := r.api.Borrowings(ctx, cmd.String("video-id"))
	if err != nil {
		return err
	}

	data, err := formatter.Export(cmd.String("format"), records)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// APIGet makes a direct GET request to the API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: PATH is required", shared.ErrMissingArgument)
	}
	useJSON := cmd.Bool("json")

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !useJSON)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
