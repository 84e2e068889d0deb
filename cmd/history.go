package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytassist/internal/formatter"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/urfave/cli/v3"
)

type songView struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Result  string `json:"result"`
	MediaID string `json:"media_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type runView struct {
	ID           string     `json:"id"`
	Prompt       string     `json:"prompt"`
	Stage        string     `json:"stage"`
	PlaylistName string     `json:"playlist_name,omitempty"`
	PlaylistID   string     `json:"playlist_id,omitempty"`
	PlaylistURL  string     `json:"playlist_url,omitempty"`
	Requested    int        `json:"requested"`
	Added        int        `json:"added"`
	RequestedBy  string     `json:"requested_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Songs        []songView `json:"songs,omitempty"`
}

func newRunView(rec models.RunRecord) runView {
	v := runView{
		ID:           rec.ID,
		Prompt:       rec.Prompt,
		Stage:        rec.Stage,
		PlaylistName: rec.PlaylistName,
		PlaylistID:   rec.PlaylistID,
		PlaylistURL:  rec.PlaylistURL,
		Requested:    rec.Requested,
		Added:        rec.Added,
		RequestedBy:  rec.RequestedBy,
		CreatedAt:    rec.CreatedAt,
	}
	for _, s := range rec.Songs {
		sv := songView{
			Title:  s.Song.Title,
			Artist: s.Song.Artist,
			Result: models.Kind(s.Result),
		}
		if s.Result != nil {
			sv.Reason = s.Result.Reason()
		}
		if added, ok := s.Result.(models.Added); ok {
			sv.MediaID = added.MediaID
		}
		v.Songs = append(v.Songs, sv)
	}
	return v
}

// HistoryList prints the most recent runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	history, err := r.runHistory(ctx)
	if err != nil {
		return err
	}

	runs, err := history.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch {
	case cmd.Bool("json"):
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	case cmd.Bool("csv"):
		return formatter.RunsToCSV(r.output, runs)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Recent runs (%d)", len(runs)))
	for _, run := range runs {
		name := run.PlaylistName
		if name == "" {
			name = "-"
		}
		r.writePlain("%s  %s  %-16s %d/%d  %s\n",
			run.ID[:min(8, len(run.ID))],
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Stage,
			run.Added,
			run.Requested,
			name,
		)
		r.writePlain("          %q\n", shared.Truncate(run.Prompt, 60))
	}
	return nil
}

// HistoryShow prints a single run with its per-song outcomes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	history, err := r.runHistory(ctx)
	if err != nil {
		return err
	}

	run, err := history.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %s: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(newRunView(*run), true)
	}

	title := run.PlaylistName
	if title == "" {
		title = run.Prompt
	}
	r.writePlainHeader(title)
	r.writePlain("ID:        %s\n", run.ID)
	r.writePlain("Prompt:    %s\n", run.Prompt)
	r.writePlain("Stage:     %s\n", run.Stage)
	r.writePlain("Created:   %s\n", run.CreatedAt.Local().Format(time.RFC1123))
	if run.RequestedBy != "" {
		r.writePlain("Requested: %s\n", run.RequestedBy)
	}
	if run.PlaylistURL != "" {
		r.writePlain("Link:      %s\n", run.PlaylistURL)
	}
	if run.Requested == 0 {
		return nil
	}

	r.writePlain("\n%d of %d songs added\n\n", run.Added, run.Requested)
	for i, s := range run.Songs {
		if added, ok := s.Result.(models.Added); ok {
			r.writePlain("%3d. ✓ %s by %s (%s)\n", i+1, s.Song.Title, s.Song.Artist, added.MediaID)
		} else {
			r.writePlain("%3d. ✗ %s\n", i+1, formatter.FailureLabel(s))
		}
	}
	return nil
}

// HistoryPrune deletes runs older than --days.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	days := int(cmd.Int("days"))
	if days < 0 {
		return fmt.Errorf("%w: days must not be negative", shared.ErrInvalidArgument)
	}

	history, err := r.runHistory(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	n, err := history.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	r.logger.Info("pruned run history", "removed", n, "cutoff", cutoff.Format(time.DateOnly))
	return r.writePlain("Removed %d run(s) older than %d day(s).\n", n, days)
}
