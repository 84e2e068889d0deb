package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/services"
	"github.com/desertthunder/ytassist/internal/tasks"
	tu "github.com/desertthunder/ytassist/internal/testing"
)

const playlistJSON = `{
	"playlist_name": "Desert Rock",
	"description": "Sun and fuzz",
	"songs": [
		{"title": "No One Knows", "artist": "Queens of the Stone Age"},
		{"title": "Green Machine", "artist": "Kyuss"}
	]
}`

type fakeHistory struct {
	runs []models.RunRecord
	err  error
}

func (f *fakeHistory) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	return f.runs, f.err
}

func newTestModel(response string, history HistorySource) *Model {
	model := &tu.MockModel{Response: response}
	catalog := &tu.MockCatalog{SearchResults: map[string][]services.MediaItem{
		"No One Knows Queens of the Stone Age": {{MediaID: "vid1", Title: "No One Knows"}},
	}}
	orch := tasks.NewOrchestrator(tasks.OrchestratorOpts{Model: model, Catalog: catalog})
	return NewModel(context.Background(), orch, history)
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain feeds progress and completion messages back into the model until the run ends.
func drain(t *testing.T, m *Model) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.view == RunningView {
		if time.Now().After(deadline) {
			t.Fatal("run did not complete")
		}
		m.Update(m.waitForProgress()())
	}
}

func TestModelRun(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		m := newTestModel(playlistJSON, nil)
		m.input.SetValue("  stoner rock  ")

		_, cmd := m.Update(press("enter"))
		if cmd == nil {
			t.Fatal("expected a command to start the run")
		}
		if m.view != RunningView || m.prompt != "stoner rock" {
			t.Fatalf("expected running view for trimmed prompt, got view=%d prompt=%q", m.view, m.prompt)
		}
		if !strings.Contains(m.View(), "stoner rock") {
			t.Error("running view should show the prompt")
		}

		drain(t, m)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if m.err != nil {
			t.Errorf("unexpected error: %v", m.err)
		}
		if m.reply == nil || m.reply.Report == nil {
			t.Fatal("expected a report reply")
		}
		if got := len(m.songList.Items()); got != 2 {
			t.Errorf("expected 2 songs listed, got %d", got)
		}

		view := m.View()
		for _, want := range []string{"Playlist: Desert Rock", "Successfully added 1 out of 2 songs.", "PLmock"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("notice", func(t *testing.T) {
		m := newTestModel("not json at all", nil)
		m.input.SetValue("anything")
		m.Update(press("enter"))
		drain(t, m)

		if m.reply == nil || m.reply.Notice != tasks.MalformedMessage {
			t.Fatalf("expected malformed notice, got %+v", m.reply)
		}
		if m.err == nil {
			t.Error("expected run error to be kept")
		}
		if !strings.Contains(m.View(), tasks.MalformedMessage) {
			t.Error("expected notice in view")
		}
	})

	t.Run("empty prompt is ignored", func(t *testing.T) {
		m := newTestModel(playlistJSON, nil)
		m.input.SetValue("   ")

		_, cmd := m.Update(press("enter"))
		if cmd != nil || m.view != PromptView {
			t.Error("expected no run for an empty prompt")
		}
	})

	t.Run("restart", func(t *testing.T) {
		m := newTestModel(playlistJSON, nil)
		m.input.SetValue("again")
		m.Update(press("enter"))
		drain(t, m)

		m.Update(press("r"))
		if m.view != PromptView {
			t.Fatalf("expected prompt view after restart, got %d", m.view)
		}
		if m.input.Value() != "" || m.reply != nil || m.result != nil {
			t.Error("expected state to be cleared")
		}
	})

	t.Run("quit keys", func(t *testing.T) {
		m := newTestModel(playlistJSON, nil)
		if _, cmd := m.Update(press("esc")); cmd == nil {
			t.Fatal("expected quit command on esc")
		} else if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestModelHistory(t *testing.T) {
	runs := []models.RunRecord{
		{ID: "1", Prompt: "p1", PlaylistName: "First", Stage: "reported", Requested: 3, Added: 2, CreatedAt: time.Now()},
		{ID: "2", Prompt: "p2", Stage: "parse_failed", CreatedAt: time.Now()},
	}

	t.Run("lists runs", func(t *testing.T) {
		m := newTestModel(playlistJSON, &fakeHistory{runs: runs})

		_, cmd := m.Update(press("tab"))
		if cmd == nil {
			t.Fatal("expected a fetch command")
		}
		m.Update(cmd())

		if m.view != HistoryView {
			t.Fatalf("expected history view, got %d", m.view)
		}
		if got := len(m.runList.Items()); got != 2 {
			t.Errorf("expected 2 runs, got %d", got)
		}

		m.Update(press("esc"))
		if m.view != PromptView {
			t.Error("esc should return to the prompt")
		}
	})

	t.Run("fetch error", func(t *testing.T) {
		m := newTestModel(playlistJSON, &fakeHistory{err: errors.New("database is locked")})

		_, cmd := m.Update(press("tab"))
		m.Update(cmd())

		if m.view != PromptView {
			t.Errorf("expected to stay on prompt, got %d", m.view)
		}
		if !strings.Contains(m.View(), "database is locked") {
			t.Error("expected error in prompt view")
		}
	})

	t.Run("disabled without source", func(t *testing.T) {
		m := newTestModel(playlistJSON, nil)
		if _, cmd := m.Update(press("tab")); cmd != nil {
			t.Error("expected no command without a history source")
		}
	})
}

func TestItems(t *testing.T) {
	t.Run("songItem", func(t *testing.T) {
		added := songItem{result: models.SongResult{Song: models.SongRequest{Title: "A", Artist: "B"}, Result: models.Added{MediaID: "v"}}}
		if added.Title() != "A by B" || added.Description() != "added • v" {
			t.Errorf("unexpected added item %q / %q", added.Title(), added.Description())
		}

		missing := songItem{result: models.SongResult{Song: models.SongRequest{Artist: "B"}, Result: models.Invalid{}}}
		if missing.Title() != "N/A by B (missing info)" || missing.Description() != "invalid" {
			t.Errorf("unexpected invalid item %q / %q", missing.Title(), missing.Description())
		}
	})

	t.Run("runItem", func(t *testing.T) {
		named := runItem{run: models.RunRecord{Prompt: "p", PlaylistName: "Named", Stage: "reported", Requested: 4, Added: 3}}
		if named.Title() != "Named" || !strings.HasSuffix(named.Description(), "reported • 3/4 songs") {
			t.Errorf("unexpected run item %q / %q", named.Title(), named.Description())
		}

		unnamed := runItem{run: models.RunRecord{Prompt: "p", Stage: "model_failed"}}
		if unnamed.Title() != "p" || strings.Contains(unnamed.Description(), "songs") {
			t.Errorf("unexpected run item %q / %q", unnamed.Title(), unnamed.Description())
		}
	})
}

func TestResponder(t *testing.T) {
	r := &Responder{}
	if r.Final() != nil || r.Ack() != "" {
		t.Fatal("expected empty responder")
	}

	_ = r.SendInitial(context.Background(), tasks.AckMessage)
	_ = r.SendFinal(context.Background(), models.Reply{Notice: tasks.NoSongsMessage})

	if r.Ack() != tasks.AckMessage {
		t.Errorf("expected ack %q, got %q", tasks.AckMessage, r.Ack())
	}
	if got := r.Final(); got == nil || got.Notice != tasks.NoSongsMessage {
		t.Errorf("unexpected final reply %+v", got)
	}
}
