package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/shared"
)

// RunRepository stores orchestrator run history.
//
// It implements tasks.RunRecorder.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts a run and its per-song results in one transaction.
func (r *RunRepository) RecordRun(ctx context.Context, rec models.RunRecord) error {
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	// stored as text, so keep a single zone for ordering and pruning
	rec.CreatedAt = rec.CreatedAt.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (id, prompt, stage, playlist_name, playlist_id, playlist_url, requested, added, requested_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		rec.ID,
		rec.Prompt,
		rec.Stage,
		rec.PlaylistName,
		rec.PlaylistID,
		rec.PlaylistURL,
		rec.Requested,
		rec.Added,
		rec.RequestedBy,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(rec.Songs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_songs (run_id, position, title, artist, result, media_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare song insert: %w", err)
		}
		defer stmt.Close()

		for i, s := range rec.Songs {
			var mediaID string
			if added, ok := s.Result.(models.Added); ok {
				mediaID = added.MediaID
			}
			if _, err := stmt.ExecContext(ctx, rec.ID, i, s.Song.Title, s.Song.Artist, models.Kind(s.Result), mediaID); err != nil {
				return fmt.Errorf("failed to insert song %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run with its songs.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	query := `
		SELECT id, prompt, stage, playlist_name, playlist_id, playlist_url, requested, added, requested_by, created_at
		FROM runs
		WHERE id = ?
	`

	rec, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	songs, err := r.songs(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Songs = songs

	return rec, nil
}

// List returns the most recent runs first, without songs. A limit <= 0 returns all runs.
func (r *RunRepository) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	query := `
		SELECT id, prompt, stage, playlist_name, playlist_id, playlist_url, requested, added, requested_by, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Prune deletes runs created before cutoff and returns how many were removed.
func (r *RunRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_songs WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune run songs: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return n, nil
}

func (r *RunRepository) songs(ctx context.Context, runID string) ([]models.SongResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, artist, result, media_id
		FROM run_songs
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run songs: %w", err)
	}
	defer rows.Close()

	var songs []models.SongResult
	for rows.Next() {
		var s models.SongResult
		var kind, mediaID string
		if err := rows.Scan(&s.Song.Title, &s.Song.Artist, &kind, &mediaID); err != nil {
			return nil, fmt.Errorf("failed to scan run song: %w", err)
		}
		s.Result = resolutionFromKind(kind, mediaID)
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run songs: %w", err)
	}
	return songs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.RunRecord, error) {
	var rec models.RunRecord
	err := row.Scan(
		&rec.ID,
		&rec.Prompt,
		&rec.Stage,
		&rec.PlaylistName,
		&rec.PlaylistID,
		&rec.PlaylistURL,
		&rec.Requested,
		&rec.Added,
		&rec.RequestedBy,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// resolutionFromKind rebuilds a stored result. Remote error details are not persisted.
func resolutionFromKind(kind, mediaID string) models.Resolution {
	switch kind {
	case "added":
		return models.Added{MediaID: mediaID}
	case "not_found":
		return models.NotFound{}
	case "invalid":
		return models.Invalid{}
	default:
		return models.APIError{}
	}
}
