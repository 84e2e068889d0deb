// package models defines the data model for the prompt-to-playlist pipeline
package models

import (
	"strings"
	"time"
)

// SongRequest is a (title, artist) pair the language model asked for.
type SongRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Valid reports whether both title and artist carry non-blank text.
func (s SongRequest) Valid() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Artist) != ""
}

// Query builds the catalog search text for the song.
func (s SongRequest) Query() string {
	return s.Title + " " + s.Artist
}

// PlaylistSpec is the validated playlist description derived from model output.
type PlaylistSpec struct {
	Name        string        `json:"playlist_name"`
	Description string        `json:"description"`
	Songs       []SongRequest `json:"songs"`
}

// Resolution is the outcome of locating and attaching one [SongRequest].
//
// The set of implementations is closed: [Added], [NotFound], [Invalid] and [APIError].
type Resolution interface {
	// Reason is the short human-readable label used in reports. Empty for [Added].
	Reason() string
	resolution()
}

// Added means the song was found and attached to the playlist.
type Added struct {
	MediaID string
}

// NotFound means the catalog search returned no match.
type NotFound struct{}

// Invalid means the song was missing a title or artist and was never searched.
type Invalid struct{}

// APIError means a remote call failed while searching or attaching.
type APIError struct {
	Stage string // "search" or "attach"
	Err   error
}

func (Added) Reason() string    { return "" }
func (NotFound) Reason() string { return "not found" }
func (Invalid) Reason() string  { return "missing info" }
func (APIError) Reason() string { return "API error adding" }

func (Added) resolution()    {}
func (NotFound) resolution() {}
func (Invalid) resolution()  {}
func (APIError) resolution() {}

// Kind returns a stable lowercase name for r, suitable for persistence.
func Kind(r Resolution) string {
	switch r.(type) {
	case Added:
		return "added"
	case NotFound:
		return "not_found"
	case Invalid:
		return "invalid"
	case APIError:
		return "api_error"
	default:
		return "unknown"
	}
}

// SongResult pairs a request with its resolution.
type SongResult struct {
	Song   SongRequest
	Result Resolution
}

// PlaylistOutcome collects the remote playlist identity and per-song results of one run.
type PlaylistOutcome struct {
	PlaylistID  string
	PlaylistURL string
	Results     []SongResult
}

// AddedCount returns the number of [Added] results.
func (o PlaylistOutcome) AddedCount() int {
	n := 0
	for _, r := range o.Results {
		if _, ok := r.Result.(Added); ok {
			n++
		}
	}
	return n
}

// Failures returns results that are not [Added], in input order.
func (o PlaylistOutcome) Failures() []SongResult {
	var failed []SongResult
	for _, r := range o.Results {
		if _, ok := r.Result.(Added); !ok {
			failed = append(failed, r)
		}
	}
	return failed
}

// Report is the final user-facing summary of a successful run.
type Report struct {
	Title        string
	Description  string
	PlaylistName string
	PlaylistURL  string
	Status       string
	Footer       string
	Success      bool // at least one song was added
}

// Reply is the concluding message of a run: a plain notice or a full [Report].
type Reply struct {
	Notice string
	Report *Report
}

// Text returns the notice, or the report status when the reply carries a report.
func (r Reply) Text() string {
	if r.Report != nil {
		return r.Report.Status
	}
	return r.Notice
}

// RunRecord is the persisted history entry for one orchestrator run.
type RunRecord struct {
	ID           string
	Prompt       string
	Stage        string
	PlaylistName string
	PlaylistID   string
	PlaylistURL  string
	Requested    int
	Added        int
	RequestedBy  string
	CreatedAt    time.Time
	Songs        []SongResult
}
