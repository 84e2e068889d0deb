// package services defines the remote capabilities the playlist pipeline depends on
//
// Gemini (language model), YouTube Data API (catalog)
package services

import (
	"context"
)

// LanguageModel turns an instruction prompt into raw generated text.
type LanguageModel interface {
	// Generate sends promptText to the model and returns its raw text output.
	Generate(ctx context.Context, promptText string) (string, error)

	// Name returns the name of the provider (e.g., "Gemini")
	Name() string
}

// Catalog is a remote media platform that can host playlists.
type Catalog interface {
	// CreatePlaylist creates an empty playlist and returns its identity.
	CreatePlaylist(ctx context.Context, name, description string) (*CreatedPlaylist, error)

	// Search returns at most q.MaxResults media items matching q.
	// An empty slice with a nil error means nothing matched.
	Search(ctx context.Context, q SearchQuery) ([]MediaItem, error)

	// Attach appends mediaID to the playlist.
	Attach(ctx context.Context, playlistID, mediaID string) error

	// Name returns the name of the catalog (e.g., "YouTube")
	Name() string
}

// CreatedPlaylist is the remote identity of a newly created playlist.
type CreatedPlaylist struct {
	ID  string
	URL string
}

// SearchQuery describes a single best-match lookup.
type SearchQuery struct {
	Query      string
	Category   string // platform category hint, e.g. YouTube's "10" (Music)
	MaxResults int64
}

// MediaItem is a search hit that can be attached to a playlist.
type MediaItem struct {
	MediaID string
	Title   string
}
