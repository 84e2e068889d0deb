package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/repositories"
	"github.com/desertthunder/ytassist/internal/services"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/desertthunder/ytassist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Remote clients and the history database are created on first use, so commands that need
// neither (setup, history) work without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	model      services.LanguageModel
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	mu      sync.Mutex
	inited  bool
	db      *sql.DB
	history *repositories.RunRepository
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Model and Catalog override the clients built from Config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Model      services.LanguageModel
	Catalog    services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
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
		model:      opts.Model,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		createCommand, serveCommand, tuiCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and every client it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// initServices builds the Gemini and YouTube clients that are configured and not injected.
//
// Failures are logged rather than returned: a run without a client stops at the
// unavailable stage and tells the user so.
func (r *Runner) initServices(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inited {
		return
	}
	r.inited = true

	if r.model == nil && r.config.HasGemini() {
		gemini, err := services.NewGeminiService(ctx, services.GeminiOpts{
			APIKey:     r.config.Credentials.Gemini.APIKey,
			Model:      r.config.Credentials.Gemini.Model,
			BaseURL:    r.config.Credentials.Gemini.BaseURL,
			HTTPClient: r.httpClient,
		})
		if err != nil {
			r.logger.Error("failed to initialize Gemini", "error", err)
		} else {
			r.model = gemini
			r.logger.Info("Gemini initialized", "model", gemini.Model())
		}
	}

	if r.catalog == nil && r.config.HasYouTube() {
		yt := r.config.Credentials.YouTube
		youtube, err := services.NewYouTubeService(ctx, services.YouTubeOpts{
			ClientID:          yt.ClientID,
			ClientSecret:      yt.ClientSecret,
			RefreshToken:      yt.RefreshToken,
			Endpoint:          yt.Endpoint,
			PrivacyStatus:     r.config.Playlist.PrivacyStatus,
			RequestsPerSecond: yt.RequestsPerSecond,
			Logger:            r.logger,
		})
		if err != nil {
			r.logger.Error("failed to initialize YouTube", "error", err)
		} else {
			r.catalog = youtube
			r.logger.Info("YouTube initialized", "privacy", r.config.Playlist.PrivacyStatus)
		}
	}
}

// runHistory opens the history database on first use.
func (r *Runner) runHistory(ctx context.Context) (*repositories.RunRepository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.history != nil {
		return r.history, nil
	}

	db, err := repositories.Open(ctx, r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	r.db = db
	r.history = repositories.NewRunRepository(db)
	return r.history, nil
}

// orchestrator wires the configured clients and, when record is set, the history database.
func (r *Runner) orchestrator(ctx context.Context, record bool) *tasks.Orchestrator {
	r.initServices(ctx)

	opts := tasks.OrchestratorOpts{
		Model:   r.model,
		Catalog: r.catalog,
		Logger:  r.logger,
	}
	if record {
		if history, err := r.runHistory(ctx); err != nil {
			r.logger.Warn("run history disabled", "error", err)
		} else {
			opts.Recorder = history
		}
	}
	return tasks.NewOrchestrator(opts)
}

// Close releases the history database, if it was opened.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.history = nil
	return err
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
