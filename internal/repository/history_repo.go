// Package repository provides data access for the session history
// store.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/remote-tui/termhost/internal/model"
)

// HistoryRepository persists one audit record per session.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts the record for a newly opened session.
func (r *HistoryRepository) Create(ctx context.Context, rec *model.Record) error {
	query := `
		INSERT INTO session_log (session_id, remote_addr, started_at, cast_path)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.SessionID,
		rec.RemoteAddr,
		rec.StartedAt,
		rec.CastPath,
	)
	if err != nil {
		return fmt.Errorf("failed to create session record: %w", err)
	}

	return nil
}

// Finish stamps the end time and reason on a session's record.
func (r *HistoryRepository) Finish(ctx context.Context, sessionID uint64, endedAt time.Time, reason string) error {
	query := `
		UPDATE session_log
		SET ended_at = ?, end_reason = ?
		WHERE session_id = ?
	`

	res, err := r.db.ExecContext(ctx, query, endedAt, reason, sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session record update: %w", err)
	}
	if affected == 0 {
		return model.ErrRecordNotFound
	}

	return nil
}

// GetByID retrieves one session's record.
func (r *HistoryRepository) GetByID(ctx context.Context, sessionID uint64) (*model.Record, error) {
	query := `
		SELECT session_id, remote_addr, started_at, ended_at, end_reason, cast_path
		FROM session_log
		WHERE session_id = ?
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, model.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}
	return rec, nil
}

// Recent retrieves the most recently started records, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*model.Record, error) {
	query := `
		SELECT session_id, remote_addr, started_at, ended_at, end_reason, cast_path
		FROM session_log
		ORDER BY started_at DESC, session_id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session records: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*model.Record, error) {
	rec := &model.Record{}
	var endedAt sql.NullTime
	var endReason sql.NullString
	var castPath sql.NullString

	err := row.Scan(
		&rec.SessionID,
		&rec.RemoteAddr,
		&rec.StartedAt,
		&endedAt,
		&endReason,
		&castPath,
	)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		t := endedAt.Time
		rec.EndedAt = &t
	}
	if endReason.Valid {
		rec.EndReason = endReason.String
	}
	if castPath.Valid {
		rec.CastPath = castPath.String
	}

	return rec, nil
}
