package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/desertthunder/borrowx/internal/formatter"
	"github.com/desertthunder/borrowx/internal/models"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/store"
	"github.com/urfave/cli/v3"
)

// Upload sends the given files as one batch and prints the borrowings found in them.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one FILE is required", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	if format == "md" {
		format = formatter.FormatMarkdown
	}
	if !slices.Contains(formatter.Formats, format) {
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	candidates := make([]models.Candidate, 0, len(paths))
	for _, path := range paths {
		c, err := models.CandidateFromPath(path)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		candidates = append(candidates, c)
	}

	printer := newProgressPrinter(r.output)
	var files *store.FileStore
	files = r.newFileStore(store.LogNotifier{Logger: r.logger}, func() {
		printer.update(files.Files())
	})

	r.logger.Info("uploading batch", "files", len(candidates), "url", r.config.Client.APIURL+r.config.Client.UploadPath)
	if err := files.Add(ctx, candidates); err != nil {
		return err
	}

	records := files.Borrowings().Borrowings()

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, format, records); err != nil {
			return err
		}
		return r.writePlain("Wrote %d borrowings to %s\n", len(records), path)
	}

	if len(records) == 0 && format == formatter.FormatText {
		return r.writePlain("No borrowings detected.\n")
	}

	data, err := formatter.Export(format, records)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// progressPrinter writes a line whenever a file crosses another tenth of its upload.
// Store change hooks run on several goroutines, so updates are serialized.
type progressPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	last map[string]int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: make(map[string]int)}
}

func (p *progressPrinter) update(files []models.UploadFile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range files {
		step := f.Progress / 10 * 10
		prev, seen := p.last[f.ID]
		if !seen {
			prev = -1
		}
		if step <= prev {
			continue
		}

		p.last[f.ID] = step
		if step == 0 {
			continue
		}
		fmt.Fprintf(p.w, "%-32s %9s %3d%%\n", f.Name, formatter.FormatSize(f.Size), step)
	}
}
