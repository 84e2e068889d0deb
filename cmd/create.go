package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytassist/internal/formatter"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/desertthunder/ytassist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Create runs one prompt through the pipeline and prints the report.
func (r *Runner) Create(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	if format != "json" {
		if _, err := formatter.Render(models.Report{}, format); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
	}

	orch := r.orchestrator(ctx, !cmd.Bool("no-history"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	responder := &cliResponder{runner: r}
	result, err := orch.Run(ctx, tasks.Request{Prompt: prompt, RequestedBy: "cli", Progress: progressCh}, responder)
	close(progressCh)
	<-progressDone

	if result != nil {
		r.logger.Debug("run finished", "run_id", result.ID, "stage", result.Stage)
	}
	if responder.final != nil {
		if werr := r.writeReply(*responder.final, format); werr != nil {
			return werr
		}
	}
	return err
}

func (r *Runner) writeReply(reply models.Reply, format string) error {
	if format == "json" {
		return r.writeJSON(newReplyView(reply), true)
	}

	if reply.Report == nil {
		return r.writePlain("\n%s\n", reply.Notice)
	}

	out, err := formatter.Render(*reply.Report, format)
	if err != nil {
		return err
	}
	r.writePlain("\n")
	r.writePlainHeader(reply.Report.Title)
	return r.writePlain("%s\n", out)
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Stage {
	case tasks.ModelInvoked:
		r.writePlain("🧠 %s\n", update.Message)
	case tasks.Parsed:
		r.writePlain("📝 %s\n", update.Message)
	case tasks.PlaylistCreated:
		r.writePlain("📀 %s\n\n", update.Message)
	case tasks.SongsResolved:
		r.writePlain("   %s\n", update.Message)
	}
}

// cliResponder prints the acknowledgement immediately and keeps the final reply
// until progress output has drained.
type cliResponder struct {
	runner *Runner
	final  *models.Reply
}

func (c *cliResponder) SendInitial(ctx context.Context, text string) error {
	return c.runner.writePlain("%s\n\n", text)
}

func (c *cliResponder) SendFinal(ctx context.Context, reply models.Reply) error {
	c.final = &reply
	return nil
}

type replyView struct {
	Notice       string `json:"notice,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	PlaylistName string `json:"playlist_name,omitempty"`
	PlaylistURL  string `json:"playlist_url,omitempty"`
	Status       string `json:"status,omitempty"`
	Success      bool   `json:"success"`
}

func newReplyView(reply models.Reply) replyView {
	if reply.Report == nil {
		return replyView{Notice: reply.Notice}
	}
	rep := reply.Report
	return replyView{
		Title:        rep.Title,
		Description:  rep.Description,
		PlaylistName: rep.PlaylistName,
		PlaylistURL:  rep.PlaylistURL,
		Status:       rep.Status,
		Success:      rep.Success,
	}
}
