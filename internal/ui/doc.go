// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single prompt-to-playlist run:
//  1. [PromptView] : type a free-text description
//  2. [RunningView] : spinner plus live stage and per-song progress
//  3. [ResultView] : the report and every song's outcome
//  4. [HistoryView] : recently recorded runs, when a [HistorySource] is given
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the orchestrator; the UI's [Responder] captures the
// acknowledgement and final reply instead of sending them anywhere.
package ui
