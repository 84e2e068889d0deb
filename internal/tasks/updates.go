package tasks

import (
	"fmt"

	"github.com/desertthunder/ytassist/internal/models"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Stage   Stage  // Stage reached
	Step    int    // Current step number within stage
	Total   int    // Total steps in this stage
	Message string // Human-readable message for display
	Data    any    // Optional stage-specific data for advanced UIs
}

// Stage of the orchestrator state machine.
//
// The happy path is Init → Acknowledged → ModelInvoked → Parsed → PlaylistCreated → SongsResolved → Reported.
// Unavailable, ModelFailed, ParseFailed, NoSongs and CreationFailed are terminal.
type Stage int

const (
	Init Stage = iota
	Acknowledged
	Unavailable
	ModelInvoked
	ModelFailed
	Parsed
	ParseFailed
	NoSongs
	PlaylistCreated
	CreationFailed
	SongsResolved
	Reported
)

func (s Stage) String() string {
	switch s {
	case Init:
		return "init"
	case Acknowledged:
		return "acknowledged"
	case Unavailable:
		return "unavailable"
	case ModelInvoked:
		return "model_invoked"
	case ModelFailed:
		return "model_failed"
	case Parsed:
		return "parsed"
	case ParseFailed:
		return "parse_failed"
	case NoSongs:
		return "no_songs"
	case PlaylistCreated:
		return "playlist_created"
	case CreationFailed:
		return "creation_failed"
	case SongsResolved:
		return "songs_resolved"
	case Reported:
		return "reported"
	default:
		return ""
	}
}

// Terminal reports whether no further stage follows s.
func (s Stage) Terminal() bool {
	switch s {
	case Unavailable, ModelFailed, ParseFailed, NoSongs, CreationFailed, Reported:
		return true
	default:
		return false
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func stageUpdate(stage Stage, message string) ProgressUpdate {
	return ProgressUpdate{Stage: stage, Step: 1, Total: 1, Message: message}
}

func parsedUpdate(spec *models.PlaylistSpec) ProgressUpdate {
	return ProgressUpdate{
		Stage:   Parsed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Model suggested %q (%d songs)", spec.Name, len(spec.Songs)),
		Data:    spec,
	}
}

func createdUpdate(name, id string) ProgressUpdate {
	return ProgressUpdate{
		Stage:   PlaylistCreated,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", name, id),
	}
}

func resolveUpdate(step, total int, r models.SongResult) ProgressUpdate {
	mark := "✓"
	if _, ok := r.Result.(models.Added); !ok {
		mark = "✗"
	}
	return ProgressUpdate{
		Stage:   SongsResolved,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, r.Song.Artist, r.Song.Title),
		Data:    r,
	}
}
