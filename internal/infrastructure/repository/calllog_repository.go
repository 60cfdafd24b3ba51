package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
)

// CallLogRepository implements outcome-record storage on PostgreSQL.
type CallLogRepository struct {
	db *pgxpool.Pool
}

// NewCallLogRepository creates a call log repository.
func NewCallLogRepository(db *pgxpool.Pool) *CallLogRepository {
	return &CallLogRepository{db: db}
}

// Append stores one outcome record.
func (r *CallLogRepository) Append(ctx context.Context, entry *call.LogEntry) error {
	query := `
		INSERT INTO call_logs (id, from_number, outcome, summary, recording_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.FromNumber, entry.Outcome, entry.Summary, entry.RecordingURL, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append call log: %w", err)
	}
	return nil
}

// AttachRecording sets the recording URL on the caller's most recent
// Voicemail record. The recording callback arrives after the routing
// decision was logged, so the two are joined by caller number and recency.
func (r *CallLogRepository) AttachRecording(ctx context.Context, fromNumber, recordingURL string) error {
	query := `
		UPDATE call_logs
		SET recording_url = $2
		WHERE id = (
			SELECT id FROM call_logs
			WHERE from_number = $1 AND outcome = $3
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id
	`

	var id string
	err := r.db.QueryRow(ctx, query, fromNumber, recordingURL, call.OutcomeVoicemail).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no voicemail record for %s: %w", fromNumber, ErrNotFound)
		}
		return fmt.Errorf("failed to attach recording: %w", err)
	}
	return nil
}

// List returns outcome records newest first.
func (r *CallLogRepository) List(ctx context.Context, limit, offset int) ([]*call.LogEntry, error) {
	query := `
		SELECT id, from_number, outcome, summary, recording_url, created_at
		FROM call_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	defer rows.Close()

	var entries []*call.LogEntry
	for rows.Next() {
		var e call.LogEntry
		if err := rows.Scan(&e.ID, &e.FromNumber, &e.Outcome, &e.Summary, &e.RecordingURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call log: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call logs: %w", err)
	}
	return entries, nil
}

// Delete removes one outcome record.
func (r *CallLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM call_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete call log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("call log %s: %w", id, ErrNotFound)
	}
	return nil
}

// Clear removes all outcome records.
func (r *CallLogRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM call_logs`); err != nil {
		return fmt.Errorf("failed to clear call logs: %w", err)
	}
	return nil
}
