package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/borrowx/internal/services"
	"github.com/desertthunder/borrowx/internal/shared"
	"github.com/desertthunder/borrowx/internal/store"
	"github.com/desertthunder/borrowx/internal/validation"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	uploader   store.Uploader
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag before any command runs.
// Nil API and Uploader are built from the client section of that config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	Uploader   store.Uploader
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		uploader:   opts.Uploader,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// Before loads configuration and builds the API clients.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, fmt.Errorf("failed to load config %s: %w", r.configPath, err)
		}
		r.config = config
	}

	r.logger.SetLevel(r.config.LogLevel())
	if cmd.Bool("debug") {
		r.logger.SetLevel(log.DebugLevel)
	}

	if r.api == nil {
		r.api = services.NewAPIService(r.config.Client.APIURL, r.httpClient)
	}
	if r.uploader == nil {
		r.uploader = services.NewUploadService(r.config.Client.APIURL, r.httpClient)
	}

	return ctx, nil
}

// SetLogger replaces the logger, e.g. to keep log output off the terminal while the TUI runs.
func (r *Runner) SetLogger(l *log.Logger) {
	l.SetLevel(r.logger.GetLevel())
	r.logger = l
}

// newFileStore builds the upload state stores for one command run.
func (r *Runner) newFileStore(notifier store.Notifier, onChange func()) *store.FileStore {
	return store.NewFileStore(store.FileStoreOpts{
		Uploader:   r.uploader,
		Borrowings: store.NewBorrowingStore(onChange),
		Rules:      validation.RulesFromConfig(r.config.Client),
		Notifier:   notifier,
		UploadPath: r.config.Client.UploadPath,
		Logger:     r.logger,
		OnChange:   onChange,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, uploadCommand, tuiCommand, serveCommand, apiCommand,
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
