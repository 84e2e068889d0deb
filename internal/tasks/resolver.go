package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/services"
)

// Resolver maps song requests to catalog items and attaches them to a playlist.
type Resolver struct {
	catalog  services.Catalog
	category string
	logger   *log.Logger
}

// NewResolver creates a resolver that searches catalog within category (e.g. [services.MusicCategory]).
func NewResolver(catalog services.Catalog, category string, logger *log.Logger) *Resolver {
	return &Resolver{catalog: catalog, category: category, logger: logger}
}

// Resolve processes songs sequentially, in order, and returns exactly one result per song.
//
// A failure on one song is recorded and never stops the loop. Calls made after ctx is
// cancelled fail like any other remote error and are recorded as [models.APIError].
func (r *Resolver) Resolve(ctx context.Context, songs []models.SongRequest, playlistID string, progress chan<- ProgressUpdate) []models.SongResult {
	results := make([]models.SongResult, len(songs))
	for i, song := range songs {
		results[i] = models.SongResult{Song: song, Result: r.resolveOne(ctx, song, playlistID, i+1, len(songs))}
		sendProgress(progress, resolveUpdate(i+1, len(songs), results[i]))
	}
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, song models.SongRequest, playlistID string, step, total int) models.Resolution {
	if !song.Valid() {
		r.logger.Warn("skipping song with missing title or artist", "title", song.Title, "artist", song.Artist)
		return models.Invalid{}
	}

	query := song.Query()
	r.logger.Info("searching catalog", "step", step, "total", total, "query", query)

	items, err := r.catalog.Search(ctx, services.SearchQuery{Query: query, Category: r.category, MaxResults: 1})
	if err != nil {
		r.logger.Error("search failed", "query", query, "error", err)
		return models.APIError{Stage: "search", Err: err}
	}
	if len(items) == 0 {
		r.logger.Warn("no search results", "query", query)
		return models.NotFound{}
	}

	mediaID := items[0].MediaID
	if err := r.catalog.Attach(ctx, playlistID, mediaID); err != nil {
		r.logger.Error("attach failed", "query", query, "media_id", mediaID, "playlist_id", playlistID, "error", err)
		return models.APIError{Stage: "attach", Err: err}
	}

	r.logger.Info("added song", "query", query, "media_id", mediaID, "playlist_id", playlistID)
	return models.Added{MediaID: mediaID}
}
