// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/borrowx/internal/formatter"
	"github.com/urfave/cli/v3"
)

var formatUsage = "Output format (" + strings.Join(formatter.Formats, ", ") + ")"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file, database and storage directory",
		Action: r.Setup,
	}
}

func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"up"},
		Usage:     "Upload videos as one batch and print detected borrowings",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage,
				Value:   formatter.FormatText,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write borrowings to a file instead of stdout",
			},
		},
		Action: r.Upload,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive upload interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the interface is open",
				Value: "./tmp/borrowx-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reference upload API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host and server.port)",
			},
			&cli.StringFlag{
				Name:  "borrowings",
				Usage: "JSON file of borrowings to report for every upload",
			},
		},
		Action: r.Serve,
	}
}

func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Query the upload API",
		Commands: []*cli.Command{
			{
				Name:   "heartbeat",
				Usage:  "Check that the API is reachable",
				Action: r.APIHeartbeat,
			},
			{
				Name:  "operation",
				Usage: "Show the state of an operation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Operation ID",
						Required: true,
					},
				},
				Action: r.APIOperation,
			},
			{
				Name:  "borrowings",
				Usage: "Show the borrowings detected in an uploaded video",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "video-id",
						Usage:    "Video ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   formatUsage,
						Value:   formatter.FormatText,
					},
				},
				Action: r.APIBorrowings,
			},
			{
				Name:      "get",
				Usage:     "Make a GET request to the API",
				ArgsUsage: "PATH",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
