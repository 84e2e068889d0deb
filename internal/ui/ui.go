package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	RunningView
	ResultView
	HistoryView
)

const (
	historyLimit = 50

	// rows kept free around each list for headers and help
	songListReserved = 12
	runListReserved  = 6
)

// PlaylistRunner runs one prompt through the playlist pipeline.
type PlaylistRunner interface {
	Run(ctx context.Context, req tasks.Request, responder tasks.Responder) (*tasks.RunResult, error)
}

// HistorySource lists recorded runs, newest first.
type HistorySource interface {
	List(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	runner  PlaylistRunner
	history HistorySource
	width   int
	height  int

	input    textinput.Model
	spinner  spinner.Model
	songList list.Model
	runList  list.Model

	prompt       string
	responder    *Responder
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	reply        *models.Reply
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. history may be nil, which hides the history view.
func NewModel(ctx context.Context, runner PlaylistRunner, history HistorySource) *Model {
	input := textinput.New()
	input.Placeholder = "a rainy sunday morning with coffee and jazz"
	input.Prompt = styles.prompt.Render("» ")
	input.CharLimit = 500
	input.Width = 60
	input.Focus()

	return &Model{
		ctx:     ctx,
		view:    PromptView,
		runner:  runner,
		history: history,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.prompt)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blinking in the prompt input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		switch m.view {
		case ResultView:
			m.songList.SetSize(m.listSize(songListReserved))
		case HistoryView:
			m.runList.SetSize(m.listSize(runListReserved))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case RunningView:
			if key.Matches(msg, m.keys.abort) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunningView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInner(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgRunComplete:
		data := msg.data.(runComplete)
		m.result = data.result
		m.reply = data.reply
		m.err = data.err
		m.progressChan = nil
		m.done = nil

		var songs []models.SongResult
		if m.result != nil && m.result.Outcome != nil {
			songs = m.result.Outcome.Results
		}
		m.songList = list.New(songItems(songs), list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = "Songs"
		m.songList.SetShowHelp(false)
		m.songList.SetSize(m.listSize(songListReserved))
		m.view = ResultView
		return m, nil

	case MsgHistoryFetched:
		data := msg.data.(historyFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.runList = list.New(runItems(data.runs), list.NewDefaultDelegate(), 0, 0)
		m.runList.Title = "Recent Playlists"
		m.runList.SetSize(m.listSize(runListReserved))
		m.view = HistoryView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort), key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		return m, m.startRun(prompt)
	case key.Matches(msg, m.keys.history):
		if m.history == nil {
			return m, nil
		}
		return m, m.fetchHistory()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PromptView
		return m, nil
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)
	return m, cmd
}

func (m *Model) updateInner(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.input, cmd = m.input.Update(msg)
	case ResultView:
		m.songList, cmd = m.songList.Update(msg)
	case HistoryView:
		m.runList, cmd = m.runList.Update(msg)
	}
	return m, cmd
}

// listSize returns list dimensions for the current window, leaving reserved rows free.
// A fixed default is used until the first window size message arrives.
func (m *Model) listSize(reserved int) (int, int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	return max(m.width-4, 20), max(m.height-reserved, 5)
}

func (m *Model) reset() {
	m.view = PromptView
	m.prompt = ""
	m.responder = nil
	m.progress = tasks.ProgressUpdate{}
	m.result = nil
	m.reply = nil
	m.err = nil
	m.input.Reset()
	m.input.Focus()
}

// startRun launches the pipeline in the background. Progress flows through a buffered
// channel that is closed once the run returns, followed by a single completion message.
func (m *Model) startRun(prompt string) tea.Cmd {
	m.view = RunningView
	m.prompt = prompt
	m.progress = tasks.ProgressUpdate{}
	m.responder = &Responder{}
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.done = make(chan Msg, 1)

	progress, done, responder := m.progressChan, m.done, m.responder
	req := tasks.Request{Prompt: prompt, RequestedBy: "tui", Progress: progress}

	go func() {
		result, err := m.runner.Run(m.ctx, req, responder)
		close(progress)
		done <- runCompleteMsg(result, responder.Final(), err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		runs, err := m.history.List(m.ctx, historyLimit)
		return historyFetchedMsg(runs, err)
	}
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("🎶 Describe a playlist")

	helpKeys := []key.Binding{m.keys.submit}
	if m.history != nil {
		helpKeys = append(helpKeys, m.keys.history)
	}
	helpKeys = append(helpKeys, m.keys.abort)

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s", title, m.input.View(), errLine, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRunning() string {
	title := styles.title.Render(fmt.Sprintf("Creating playlist for %q", m.prompt))

	ack := tasks.AckMessage
	if m.responder != nil && m.responder.Ack() != "" {
		ack = m.responder.Ack()
	}

	var phase string
	switch m.progress.Stage {
	case tasks.ModelInvoked, tasks.Parsed:
		phase = m.progress.Message
	case tasks.PlaylistCreated:
		phase = "Searching for songs..."
	case tasks.SongsResolved:
		phase = fmt.Sprintf("Adding songs (%d/%d)\n%s", m.progress.Step, m.progress.Total, m.progress.Message)
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n%s %s\n\n%s\n\n%s", title, m.spinner.View(), ack, phase, m.help.ShortHelpView([]key.Binding{m.keys.abort}))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.restart, m.keys.quit})

	if m.reply == nil {
		msg := "The run ended without a reply."
		if m.err != nil {
			msg = fmt.Sprintf("Run failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	if m.reply.Report == nil {
		return fmt.Sprintf("%s\n\n%s", styles.warn.Render(m.reply.Notice), helpView)
	}

	r := m.reply.Report
	var b strings.Builder
	b.WriteString(styles.title.Render(r.Title) + "\n")
	if r.Description != "" {
		b.WriteString(r.Description + "\n\n")
	}
	b.WriteString(fmt.Sprintf("Playlist: %s\n", r.PlaylistName))
	if r.PlaylistURL != "" {
		b.WriteString(fmt.Sprintf("Link: %s\n", r.PlaylistURL))
	}
	b.WriteString("\n" + styles.Status(r.Success).Render(r.Status) + "\n\n")
	b.WriteString(m.songList.View() + "\n\n")
	b.WriteString(styles.help.Render(r.Footer) + "\n")
	b.WriteString(helpView)
	return b.String()
}

func (m *Model) renderHistory() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.abort})
	return fmt.Sprintf("%s\n\n%s", m.runList.View(), helpView)
}
