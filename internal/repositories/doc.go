// Package repositories implements SQLite persistence for run history.
//
// Key Implementations:
//   - [RunRepository] : one row per orchestrator run plus ordered per-song results
//
// [Open] is the single entry point for callers: it opens the database, enables foreign keys
// and applies the embedded migrations from the shared package.
//
// History is write-mostly. The pipeline never reads it back, so a run's outcome cannot depend
// on earlier runs.
package repositories
