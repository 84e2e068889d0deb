// Package models defines the value types passed between the pipeline stages of ytassist.
//
// The package contains two categories of types:
//
// 1. Pipeline values: produced and consumed within a single request
//   - [SongRequest] : a (title, artist) pair requested by the language model
//   - [PlaylistSpec] : validated playlist name, description and songs
//   - [Resolution] : closed variant set ([Added], [NotFound], [Invalid], [APIError])
//   - [PlaylistOutcome] : remote playlist identity plus ordered per-song results
//   - [Report] : user-facing summary of a completed run
//   - [Reply] : final message handed to a responder, either a notice or a report
//
// 2. History: written after each run and read back by the CLI
//   - [RunRecord] : stage reached, counts and per-song results of one run
//
// None of the pipeline values outlive the request that produced them.
package models
