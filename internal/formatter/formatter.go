// package formatter builds the final playlist report and renders it (plain text, Markdown, Telegram HTML, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/ytassist/internal/models"
)

const (
	ReportTitle        = "🎶 Playlist Created! 🎶"
	ReportFooter       = "Powered by Gemini & YouTube Music"
	DefaultDescription = "Enjoy your new playlist!"

	// maxListedFailures caps how many failed songs the status line names.
	maxListedFailures = 3
)

// Summarize builds the [models.Report] for a run whose songs have all been processed.
func Summarize(spec models.PlaylistSpec, outcome models.PlaylistOutcome) models.Report {
	added := outcome.AddedCount()

	description := spec.Description
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}

	return models.Report{
		Title:        ReportTitle,
		Description:  description,
		PlaylistName: spec.Name,
		PlaylistURL:  outcome.PlaylistURL,
		Status:       StatusLine(added, len(spec.Songs), outcome.Failures()),
		Footer:       ReportFooter,
		Success:      added > 0,
	}
}

// StatusLine describes how many songs were added and names up to three failures.
func StatusLine(added, total int, failures []models.SongResult) string {
	if added == 0 && total > 0 {
		return fmt.Sprintf("Could not add any of the %d songs to the playlist. See logs for details.", total)
	}

	status := fmt.Sprintf("Successfully added %d out of %d songs.", added, total)
	if len(failures) == 0 {
		return status
	}

	shown := failures
	if len(shown) > maxListedFailures {
		shown = shown[:maxListedFailures]
	}

	labels := make([]string, len(shown))
	for i, f := range shown {
		labels[i] = FailureLabel(f)
	}

	status += "\nCould not add: " + strings.Join(labels, ", ")
	if extra := len(failures) - maxListedFailures; extra > 0 {
		status += fmt.Sprintf(" and %d more.", extra)
	}
	return status
}

// FailureLabel formats a failed song as "{title} by {artist} ({reason})".
func FailureLabel(r models.SongResult) string {
	return fmt.Sprintf("%s by %s (%s)", orNA(r.Song.Title), orNA(r.Song.Artist), r.Result.Reason())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// ReportToText renders a report as plain text for terminals.
func ReportToText(r models.Report) string {
	var buf bytes.Buffer

	buf.WriteString(r.Title + "\n")
	buf.WriteString(r.Description + "\n\n")
	buf.WriteString(fmt.Sprintf("Playlist Name: %s\n", r.PlaylistName))
	if r.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("Link: %s\n", r.PlaylistURL))
	}
	buf.WriteString(fmt.Sprintf("Status: %s\n", r.Status))
	buf.WriteString("\n" + r.Footer + "\n")

	return buf.String()
}

// ReportToMarkdown renders a report as Markdown.
func ReportToMarkdown(r models.Report) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	buf.WriteString(r.Description + "\n\n")
	buf.WriteString(fmt.Sprintf("**Playlist Name**: %s\n\n", r.PlaylistName))
	if r.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("**Link**: [Click Here](%s)\n\n", r.PlaylistURL))
	}
	buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", strings.ReplaceAll(r.Status, "\n", "  \n")))
	buf.WriteString(fmt.Sprintf("_%s_\n", r.Footer))

	return buf.String()
}

// ReportToHTML renders a report using the subset of HTML that Telegram accepts.
func ReportToHTML(r models.Report) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(r.Title)))
	buf.WriteString(html.EscapeString(r.Description) + "\n\n")
	buf.WriteString(fmt.Sprintf("<b>Playlist Name</b>\n%s\n\n", html.EscapeString(r.PlaylistName)))
	if r.PlaylistURL != "" {
		buf.WriteString(fmt.Sprintf("<b>Link</b>\n<a href=\"%s\">Click Here</a>\n\n", html.EscapeString(r.PlaylistURL)))
	}
	buf.WriteString(fmt.Sprintf("<b>Status</b>\n%s\n\n", html.EscapeString(r.Status)))
	buf.WriteString(fmt.Sprintf("<i>%s</i>", html.EscapeString(r.Footer)))

	return buf.String()
}

// Render dispatches on format: text, markdown or html.
func Render(r models.Report, format string) (string, error) {
	switch format {
	case "", "text", "txt":
		return ReportToText(r), nil
	case "markdown", "md":
		return ReportToMarkdown(r), nil
	case "html":
		return ReportToHTML(r), nil
	default:
		return "", fmt.Errorf("unsupported format %q (want text, markdown or html)", format)
	}
}

// RunsToCSV writes run history with columns: ID, Created, Stage, Prompt, Playlist, URL, Added, Requested, RequestedBy
func RunsToCSV(w io.Writer, runs []models.RunRecord) error {
	writer := csv.NewWriter(w)

	headers := []string{"ID", "Created", "Stage", "Prompt", "Playlist", "URL", "Added", "Requested", "RequestedBy"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.ID,
			run.CreatedAt.Format(time.RFC3339),
			run.Stage,
			run.Prompt,
			run.PlaylistName,
			run.PlaylistURL,
			strconv.Itoa(run.Added),
			strconv.Itoa(run.Requested),
			run.RequestedBy,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}
