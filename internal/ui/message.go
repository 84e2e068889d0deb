package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunComplete
	MsgHistoryFetched
)

type runComplete struct {
	result *tasks.RunResult
	reply  *models.Reply
	err    error
}

type historyFetched struct {
	runs []models.RunRecord
	err  error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(result *tasks.RunResult, reply *models.Reply, err error) Msg {
	return Msg{kind: MsgRunComplete, data: runComplete{result, reply, err}}
}

// historyFetchedMsg is the constructor for [MsgHistoryFetched]
func historyFetchedMsg(runs []models.RunRecord, err error) Msg {
	return Msg{kind: MsgHistoryFetched, data: historyFetched{runs, err}}
}
