package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/formatter"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/services"
	"github.com/desertthunder/ytassist/internal/shared"
)

// User-facing messages. Remote error details are logged, never shown.
const (
	AckMessage                = "🤖 Crafting your playlist... this may take a moment."
	ModelUnavailableMessage   = "I'm sorry, but my connection to the AI story-teller (Gemini) is not working. Please try again later."
	CatalogUnavailableMessage = "I'm sorry, but my connection to YouTube is not working. Please try again later."
	ModelFailedMessage        = "There was an issue dreaming up your playlist with the AI. Please try again."
	MalformedMessage          = "I received a peculiar song list from the AI and couldn't quite understand it. Please try a different prompt!"
	SchemaMessage             = "The AI gave me a song list, but it seems to be missing some important details. Please try a different prompt!"
	NoSongsMessage            = "The AI couldn't come up with any songs for your prompt. Try being more specific or creative!"
	CreationFailedMessage     = "I couldn't create the playlist on YouTube. Please try again later."
)

// Responder is the channel a run acknowledges on and concludes on.
type Responder interface {
	// SendInitial sends an immediate acknowledgement.
	SendInitial(ctx context.Context, text string) error

	// SendFinal sends the concluding notice or report.
	SendFinal(ctx context.Context, reply models.Reply) error
}

// RunRecorder persists a summary of each run. Failures are logged and otherwise ignored.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec models.RunRecord) error
}

// Request is a single prompt to turn into a playlist.
type Request struct {
	Prompt      string
	RequestedBy string                // free-form requester label for history
	Progress    chan<- ProgressUpdate // optional, never blocks
}

// RunResult describes how far a run got.
type RunResult struct {
	ID      string
	Stage   Stage
	Spec    *models.PlaylistSpec
	Outcome *models.PlaylistOutcome
	Report  *models.Report
}

// OrchestratorOpts configures [NewOrchestrator].
//
// Model and Catalog may be nil; runs then stop at [Unavailable].
type OrchestratorOpts struct {
	Model    services.LanguageModel
	Catalog  services.Catalog
	Recorder RunRecorder
	Category string // catalog search category, defaults to [services.MusicCategory]
	Logger   *log.Logger
}

// Orchestrator drives one prompt through model, parser, catalog and reporter.
//
// It holds no per-run state, so a single instance serves concurrent runs.
type Orchestrator struct {
	model    services.LanguageModel
	catalog  services.Catalog
	recorder RunRecorder
	category string
	logger   *log.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(opts OrchestratorOpts) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Category == "" {
		opts.Category = services.MusicCategory
	}
	return &Orchestrator{
		model:    opts.Model,
		catalog:  opts.Catalog,
		recorder: opts.Recorder,
		category: opts.Category,
		logger:   opts.Logger,
	}
}

// Run executes the pipeline for req, reporting through responder.
//
// Fatal stages send one notice and return an error wrapping the matching sentinel
// ([shared.ErrServiceUnavailable], [shared.ErrModelFailed], [shared.ErrMalformedOutput],
// [shared.ErrSchemaViolation], [shared.ErrCreationFailed]). A model that suggests no songs
// ends at [NoSongs] with a nil error. Exactly one playlist is created per run that reaches
// [PlaylistCreated], and it is never rolled back.
func (o *Orchestrator) Run(ctx context.Context, req Request, responder Responder) (*RunResult, error) {
	result := &RunResult{ID: shared.GenerateID(), Stage: Init}
	logger := shared.WithLogger(o.logger, "run_id", result.ID)
	defer o.record(ctx, logger, req, result)

	if err := responder.SendInitial(ctx, AckMessage); err != nil {
		logger.Error("failed to send acknowledgement", "error", err)
		return result, fmt.Errorf("failed to acknowledge request: %w", err)
	}
	o.advance(req, result, stageUpdate(Acknowledged, "Request acknowledged"))

	if o.model == nil {
		logger.Error("language model not configured")
		o.conclude(ctx, logger, responder, req, result, Unavailable, ModelUnavailableMessage)
		return result, fmt.Errorf("%w: language model not initialized", shared.ErrServiceUnavailable)
	}
	if o.catalog == nil {
		logger.Error("catalog not configured")
		o.conclude(ctx, logger, responder, req, result, Unavailable, CatalogUnavailableMessage)
		return result, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	o.advance(req, result, stageUpdate(ModelInvoked, fmt.Sprintf("Asking %s for songs...", o.model.Name())))
	logger.Info("sending prompt to language model", "prompt", req.Prompt)

	raw, err := o.model.Generate(ctx, BuildPrompt(req.Prompt))
	if err != nil {
		logger.Error("language model request failed", "error", err)
		o.conclude(ctx, logger, responder, req, result, ModelFailed, ModelFailedMessage)
		return result, fmt.Errorf("%w: %w", shared.ErrModelFailed, err)
	}
	logger.Debug("language model raw response", "text", raw)

	spec, err := Parse(raw)
	if err != nil {
		notice := MalformedMessage
		if errors.Is(err, shared.ErrSchemaViolation) {
			notice = SchemaMessage
		}
		logger.Error("unusable language model output", "error", err, "response", shared.Truncate(raw, 500))
		o.conclude(ctx, logger, responder, req, result, ParseFailed, notice)
		return result, err
	}
	result.Spec = spec
	o.advance(req, result, parsedUpdate(spec))

	if len(spec.Songs) == 0 {
		logger.Warn("language model returned no songs", "playlist_name", spec.Name)
		o.conclude(ctx, logger, responder, req, result, NoSongs, NoSongsMessage)
		return result, nil
	}

	logger.Info("creating playlist", "catalog", o.catalog.Name(), "playlist_name", spec.Name)
	created, err := o.catalog.CreatePlaylist(ctx, spec.Name, spec.Description)
	if err != nil {
		logger.Error("failed to create playlist", "playlist_name", spec.Name, "error", err)
		o.conclude(ctx, logger, responder, req, result, CreationFailed, CreationFailedMessage)
		return result, fmt.Errorf("%w: %w", shared.ErrCreationFailed, err)
	}

	result.Outcome = &models.PlaylistOutcome{PlaylistID: created.ID, PlaylistURL: created.URL}
	logger.Info("playlist created", "playlist_id", created.ID, "url", created.URL)
	o.advance(req, result, createdUpdate(spec.Name, created.ID))

	resolver := NewResolver(o.catalog, o.category, logger)
	result.Outcome.Results = resolver.Resolve(ctx, spec.Songs, created.ID, req.Progress)
	result.Stage = SongsResolved

	report := formatter.Summarize(*spec, *result.Outcome)
	result.Report = &report
	logger.Info("songs resolved", "added", result.Outcome.AddedCount(), "requested", len(spec.Songs))

	if err := responder.SendFinal(ctx, models.Reply{Report: &report}); err != nil {
		logger.Error("failed to send report", "error", err)
		return result, fmt.Errorf("failed to send report: %w", err)
	}
	o.advance(req, result, ProgressUpdate{Stage: Reported, Step: 1, Total: 1, Message: report.Status, Data: &report})

	return result, nil
}

func (o *Orchestrator) advance(req Request, result *RunResult, update ProgressUpdate) {
	result.Stage = update.Stage
	sendProgress(req.Progress, update)
}

// conclude moves the run into a terminal stage and sends notice as the final reply.
func (o *Orchestrator) conclude(ctx context.Context, logger *log.Logger, responder Responder, req Request, result *RunResult, stage Stage, notice string) {
	o.advance(req, result, stageUpdate(stage, notice))
	if err := responder.SendFinal(ctx, models.Reply{Notice: notice}); err != nil {
		logger.Error("failed to send notice", "stage", stage, "error", err)
	}
}

func (o *Orchestrator) record(ctx context.Context, logger *log.Logger, req Request, result *RunResult) {
	if o.recorder == nil {
		return
	}

	rec := models.RunRecord{
		ID:          result.ID,
		Prompt:      req.Prompt,
		Stage:       result.Stage.String(),
		RequestedBy: req.RequestedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if result.Spec != nil {
		rec.PlaylistName = result.Spec.Name
		rec.Requested = len(result.Spec.Songs)
	}
	if result.Outcome != nil {
		rec.PlaylistID = result.Outcome.PlaylistID
		rec.PlaylistURL = result.Outcome.PlaylistURL
		rec.Added = result.Outcome.AddedCount()
		rec.Songs = result.Outcome.Results
	}

	if err := o.recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}
