// YouTube Data API v3 [Catalog] implementation
//
// Authenticates with a stored OAuth2 refresh token; the oauth2 transport mints access tokens on demand.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytassist/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// MusicCategory is the YouTube video category ID for Music.
	MusicCategory = "10"

	playlistURLFormat = "https://www.youtube.com/playlist?list=%s"
)

// YouTubeOpts configures [NewYouTubeService].
type YouTubeOpts struct {
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	Endpoint          string       // overrides the API base URL, used by tests
	PrivacyStatus     string       // public, unlisted or private; defaults to public
	RequestsPerSecond float64      // <= 0 disables client-side throttling
	HTTPClient        *http.Client // skips OAuth when set
	Logger            *log.Logger
}

// YouTubeService implements [Catalog] for the YouTube Data API.
type YouTubeService struct {
	api     *youtube.Service
	privacy string
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYouTubeService creates a YouTube Data API client.
//
// Without opts.HTTPClient, all three OAuth values are required.
func NewYouTubeService(ctx context.Context, opts YouTubeOpts) (*YouTubeService, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		if opts.ClientID == "" || opts.ClientSecret == "" || opts.RefreshToken == "" {
			return nil, fmt.Errorf("%w: youtube client_id, client_secret and refresh_token", shared.ErrMissingCredentials)
		}
		httpClient = oauthClient(ctx, opts)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	api, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	if opts.PrivacyStatus == "" {
		opts.PrivacyStatus = "public"
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &YouTubeService{
		api:     api,
		privacy: opts.PrivacyStatus,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

func oauthClient(ctx context.Context, opts YouTubeOpts) *http.Client {
	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Scopes:       []string{youtube.YoutubeForceSslScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
	return config.Client(ctx, &oauth2.Token{RefreshToken: opts.RefreshToken})
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// PlaylistURL returns the public watch URL for a playlist ID.
func PlaylistURL(id string) string {
	return fmt.Sprintf(playlistURLFormat, id)
}

// CreatePlaylist inserts a playlist with the configured privacy status.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (*CreatedPlaylist, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pl := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       name,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{PrivacyStatus: y.privacy},
	}

	created, err := y.api.Playlists.Insert([]string{"snippet", "status"}, pl).Context(ctx).Do()
	if err != nil {
		return nil, y.apiError("playlists.insert", err)
	}

	return &CreatedPlaylist{ID: created.Id, URL: PlaylistURL(created.Id)}, nil
}

// Search runs a video search, optionally restricted to a category.
func (y *YouTubeService) Search(ctx context.Context, q SearchQuery) ([]MediaItem, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 1
	}

	call := y.api.Search.List([]string{"snippet"}).
		Q(q.Query).
		Type("video").
		MaxResults(maxResults)
	if q.Category != "" {
		call = call.VideoCategoryId(q.Category)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, y.apiError("search.list", err)
	}

	items := make([]MediaItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		media := MediaItem{MediaID: item.Id.VideoId}
		if item.Snippet != nil {
			media.Title = item.Snippet.Title
		}
		items = append(items, media)
	}

	return items, nil
}

// Attach inserts a video into a playlist.
func (y *YouTubeService) Attach(ctx context.Context, playlistID, mediaID string) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: mediaID,
			},
		},
	}

	if _, err := y.api.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
		return y.apiError("playlistItems.insert", err)
	}
	return nil
}

// apiError logs the status and body of a failed call and wraps it in [shared.ErrAPIRequest].
func (y *YouTubeService) apiError(method string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		y.logger.Error("youtube API error", "method", method, "status", gerr.Code, "message", gerr.Message)
		return fmt.Errorf("%w: youtube %s (status %d): %s", shared.ErrAPIRequest, method, gerr.Code, gerr.Message)
	}
	y.logger.Error("youtube request failed", "method", method, "error", err)
	return fmt.Errorf("%w: youtube %s: %w", shared.ErrAPIRequest, method, err)
}
