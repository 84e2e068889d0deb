package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/services"
	"github.com/desertthunder/ytassist/internal/shared"
	"github.com/desertthunder/ytassist/internal/tasks"
	tu "github.com/desertthunder/ytassist/internal/testing"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/urfave/cli/v3"
)

const playlistJSON = `{
	"playlist_name": "Desert Rock",
	"description": "Sun and fuzz",
	"songs": [
		{"title": "No One Knows", "artist": "Queens of the Stone Age"},
		{"title": "Green Machine", "artist": "Kyuss"}
	]
}`

// newTestRunner returns a runner backed by mocks and a throwaway history database.
func newTestRunner(t *testing.T, response string) (*Runner, *bytes.Buffer) {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "history.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Output: output,
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Model:  &tu.MockModel{Response: response},
		Catalog: &tu.MockCatalog{SearchResults: map[string][]services.MediaItem{
			"No One Knows Queens of the Stone Age": {{MediaID: "vid1", Title: "No One Knows"}},
		}},
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

func runCLI(ctx context.Context, r *Runner, args ...string) error {
	app := &cli.Command{Name: "ytassist", Commands: r.register()}
	return app.Run(ctx, append([]string{"ytassist"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			model := &tu.MockModel{}
			catalog := &tu.MockCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Model:      model,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.model != model {
				t.Error("expected model to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("initServices", func(t *testing.T) {
		t.Run("leaves clients nil without credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials = shared.CredentialsConfig{}
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(&bytes.Buffer{})})

			runner.initServices(context.Background())

			if runner.model != nil || runner.catalog != nil {
				t.Error("expected no clients without credentials")
			}
		})

		t.Run("keeps injected clients", func(t *testing.T) {
			model := &tu.MockModel{}
			runner := NewRunner(RunnerOpts{Model: model, Logger: shared.NewLogger(&bytes.Buffer{})})

			runner.initServices(context.Background())

			if runner.model != model {
				t.Error("expected injected model to be kept")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := map[string]bool{"create": false, "serve": false, "tui": false, "history": false, "setup": false}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			want[cmd.Name] = true
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("prints report and records the run", func(t *testing.T) {
		runner, output := newTestRunner(t, playlistJSON)

		if err := runCLI(ctx, runner, "create", "desert", "rock"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		for _, want := range []string{
			tasks.AckMessage,
			"Playlist Name: Desert Rock",
			"Successfully added 1 out of 2 songs.",
			"https://www.youtube.com/playlist?list=PLmock",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, got)
			}
		}
		if strings.Index(got, tasks.AckMessage) > strings.Index(got, "Playlist Name: Desert Rock") {
			t.Error("expected acknowledgement before the report")
		}

		history, err := runner.runHistory(ctx)
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		runs, err := history.List(ctx, 10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(runs))
		}
		if runs[0].Prompt != "desert rock" || runs[0].RequestedBy != "cli" || runs[0].Added != 1 {
			t.Errorf("unexpected run record %+v", runs[0])
		}
	})

	t.Run("json format", func(t *testing.T) {
		runner, output := newTestRunner(t, playlistJSON)

		if err := runCLI(ctx, runner, "create", "--format", "json", "--no-history", "desert rock"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		start := strings.Index(got, "{\n")
		if start < 0 {
			t.Fatalf("expected JSON in output, got %q", got)
		}
		var view replyView
		if err := json.Unmarshal([]byte(got[start:]), &view); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if view.PlaylistName != "Desert Rock" || !view.Success {
			t.Errorf("unexpected reply %+v", view)
		}
	})

	t.Run("no-history skips the database", func(t *testing.T) {
		runner, _ := newTestRunner(t, playlistJSON)

		if err := runCLI(ctx, runner, "create", "--no-history", "desert rock"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(runner.config.Database.Path); !os.IsNotExist(err) {
			t.Error("expected no history database to be created")
		}
	})

	t.Run("notice for malformed model output", func(t *testing.T) {
		runner, output := newTestRunner(t, "no json here")

		err := runCLI(ctx, runner, "create", "--no-history", "anything")
		if !errors.Is(err, shared.ErrMalformedOutput) {
			t.Errorf("expected ErrMalformedOutput, got %v", err)
		}
		if !strings.Contains(output.String(), tasks.MalformedMessage) {
			t.Errorf("expected malformed notice, got %q", output.String())
		}
	})

	t.Run("unavailable without clients", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials = shared.CredentialsConfig{}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

		err := runCLI(ctx, runner, "create", "--no-history", "anything")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if !strings.Contains(output.String(), tasks.ModelUnavailableMessage) {
			t.Errorf("expected unavailable notice, got %q", output.String())
		}
	})

	t.Run("missing prompt", func(t *testing.T) {
		runner, output := newTestRunner(t, playlistJSON)

		err := runCLI(ctx, runner, "create", "   ")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got %q", output.String())
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		runner, _ := newTestRunner(t, playlistJSON)

		err := runCLI(ctx, runner, "create", "--format", "yaml", "desert rock")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, runner *Runner) []models.RunRecord {
		t.Helper()
		history, err := runner.runHistory(ctx)
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		records := []models.RunRecord{
			{
				ID: "run-new", Prompt: "desert rock", Stage: "reported", PlaylistName: "Desert Rock",
				PlaylistID: "PL1", PlaylistURL: "https://www.youtube.com/playlist?list=PL1",
				Requested: 2, Added: 1, RequestedBy: "cli", CreatedAt: time.Now(),
				Songs: []models.SongResult{
					{Song: models.SongRequest{Title: "No One Knows", Artist: "Queens of the Stone Age"}, Result: models.Added{MediaID: "vid1"}},
					{Song: models.SongRequest{Title: "Green Machine", Artist: "Kyuss"}, Result: models.NotFound{}},
				},
			},
			{ID: "run-old", Prompt: "old jazz", Stage: "parse_failed", RequestedBy: "telegram:1", CreatedAt: time.Now().AddDate(0, 0, -90)},
		}
		for _, rec := range records {
			if err := history.RecordRun(ctx, rec); err != nil {
				t.Fatalf("failed to seed run: %v", err)
			}
		}
		return records
	}

	t.Run("list", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "Recent runs (2)") || !strings.Contains(got, "Desert Rock") {
			t.Errorf("unexpected list output:\n%s", got)
		}
		if strings.Index(got, "desert rock") > strings.Index(got, "old jazz") {
			t.Error("expected newest run first")
		}
	})

	t.Run("list empty", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := runCLI(ctx, runner, "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No runs recorded yet.") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("list json", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history", "--json", "--limit", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var views []runView
		if err := json.Unmarshal(output.Bytes(), &views); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(views) != 1 || views[0].ID != "run-new" {
			t.Errorf("unexpected runs %+v", views)
		}
	})

	t.Run("list csv", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history", "--csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID,Created,Stage") {
			t.Errorf("unexpected CSV output:\n%s", output.String())
		}
	})

	t.Run("show", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history", "show", "run-new"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got := output.String()
		for _, want := range []string{"1 of 2 songs added", "✓ No One Knows by Queens of the Stone Age (vid1)", "✗ Green Machine by Kyuss (not found)"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, got)
			}
		}
	})

	t.Run("show json", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history", "show", "--json", "run-new"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var view runView
		if err := json.Unmarshal(output.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(view.Songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(view.Songs))
		}
		if view.Songs[0].Result != "added" || view.Songs[0].MediaID != "vid1" {
			t.Errorf("unexpected first song %+v", view.Songs[0])
		}
		if view.Songs[1].Result != "not_found" || view.Songs[1].Reason != "not found" {
			t.Errorf("unexpected second song %+v", view.Songs[1])
		}
	})

	t.Run("show missing id", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := runCLI(ctx, runner, "history", "show")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show unknown id", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := runCLI(ctx, runner, "history", "show", "nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("prune", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		seed(t, runner)

		if err := runCLI(ctx, runner, "history", "prune", "--days", "30"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed 1 run(s)") {
			t.Errorf("unexpected output %q", output.String())
		}

		history, _ := runner.runHistory(ctx)
		runs, err := history.List(ctx, 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "run-new" {
			t.Errorf("expected only the recent run to remain, got %+v", runs)
		}
	})
}

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runCLI(ctx, runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := runCLI(ctx, runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database and rollback", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "setup.db")
		if err := os.WriteFile(path, []byte("[database]\npath = \""+filepath.ToSlash(dbPath)+"\"\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runCLI(ctx, runner, "setup", "database", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, dbPath)

		if err := runCLI(ctx, runner, "setup", "rollback", "--config", path); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("database creates missing config", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		if err := runCLI(ctx, runner, "setup", "database", "--config", "config.toml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	})
}

type stubBotAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.Chattable
	stop    sync.Once
}

func (s *stubBotAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return s.updates
}

func (s *stubBotAPI) StopReceivingUpdates() {
	s.stop.Do(func() { close(s.updates) })
}

func (s *stubBotAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *stubBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *stubBotAPI) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestServe(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Telegram.Token = ""
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(&bytes.Buffer{})})

		err := runCLI(context.Background(), runner, "serve")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("handles a group command and records it", func(t *testing.T) {
		runner, _ := newTestRunner(t, playlistJSON)
		api := &stubBotAPI{updates: make(chan tgbotapi.Update, 1)}
		api.updates <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
			MessageID: 5,
			From:      &tgbotapi.User{ID: 42},
			Chat:      &tgbotapi.Chat{ID: -100, Type: "group"},
			Text:      "/createplaylist desert rock",
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/createplaylist")}},
		}}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- runner.serve(ctx, api, "ytassist_bot") }()

		deadline := time.Now().Add(5 * time.Second)
		for api.sentCount() < 2 {
			if time.Now().After(deadline) {
				cancel()
				t.Fatal("bot did not reply")
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
		if err := <-errCh; err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}

		history, err := runner.runHistory(context.Background())
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		runs, err := history.List(context.Background(), 10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].RequestedBy != "telegram:42" {
			t.Errorf("unexpected runs %+v", runs)
		}
	})
}
