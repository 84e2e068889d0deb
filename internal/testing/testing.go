// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/services"
)

// MockModel is a test double for [services.LanguageModel]
type MockModel struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

func (m *MockModel) Generate(ctx context.Context, promptText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, promptText)
	return m.Response, m.Err
}

func (m *MockModel) Name() string { return "mock-model" }

// Calls returns how many times Generate was invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockCatalog is a test double for [services.Catalog].
//
// Search results and errors are keyed by query text. Attach errors are keyed by media ID.
type MockCatalog struct {
	mu sync.Mutex

	Created       *services.CreatedPlaylist
	CreateErr     error
	SearchResults map[string][]services.MediaItem
	SearchErrs    map[string]error
	AttachErrs    map[string]error

	CreateCalls []string
	Searches    []services.SearchQuery
	Attached    []string
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string) (*services.CreatedPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, name)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Created != nil {
		return m.Created, nil
	}
	return &services.CreatedPlaylist{ID: "PLmock", URL: "https://www.youtube.com/playlist?list=PLmock"}, nil
}

func (m *MockCatalog) Search(ctx context.Context, q services.SearchQuery) ([]services.MediaItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, q)
	if err, ok := m.SearchErrs[q.Query]; ok {
		return nil, err
	}
	return m.SearchResults[q.Query], nil
}

func (m *MockCatalog) Attach(ctx context.Context, playlistID, mediaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.AttachErrs[mediaID]; ok {
		return err
	}
	m.Attached = append(m.Attached, mediaID)
	return nil
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// TotalCalls returns the number of remote calls of any kind.
func (m *MockCatalog) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateCalls) + len(m.Searches) + len(m.Attached)
}

// RecordingResponder captures everything sent to it
type RecordingResponder struct {
	mu         sync.Mutex
	Initial    []string
	Finals     []models.Reply
	InitialErr error
	FinalErr   error
}

func (r *RecordingResponder) SendInitial(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Initial = append(r.Initial, text)
	return r.InitialErr
}

func (r *RecordingResponder) SendFinal(ctx context.Context, reply models.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finals = append(r.Finals, reply)
	return r.FinalErr
}

// Last returns the most recent final reply, failing the test when there is none.
func (r *RecordingResponder) Last(t *testing.T) models.Reply {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Finals) == 0 {
		t.Fatal("expected a final reply, got none")
	}
	return r.Finals[len(r.Finals)-1]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

