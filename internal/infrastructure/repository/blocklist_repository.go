package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
)

// BlocklistRepository implements blacklist storage on PostgreSQL.
type BlocklistRepository struct {
	db *pgxpool.Pool
}

// NewBlocklistRepository creates a blocklist repository.
func NewBlocklistRepository(db *pgxpool.Pool) *BlocklistRepository {
	return &BlocklistRepository{db: db}
}

// List returns all blacklist entries ordered by creation time. Order is
// load-bearing: the lookup service applies first-match-wins semantics.
func (r *BlocklistRepository) List(ctx context.Context) ([]*blocklist.Entry, error) {
	query := `
		SELECT id, phone_number, reason, pattern_type, added_at
		FROM blocklist_entries
		ORDER BY added_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocklist entries: %w", err)
	}
	defer rows.Close()

	var entries []*blocklist.Entry
	for rows.Next() {
		var e blocklist.Entry
		if err := rows.Scan(&e.ID, &e.PhoneNumber, &e.Reason, &e.PatternType, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocklist entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blocklist entries: %w", err)
	}
	return entries, nil
}

// GetByID retrieves one entry.
func (r *BlocklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*blocklist.Entry, error) {
	query := `
		SELECT id, phone_number, reason, pattern_type, added_at
		FROM blocklist_entries
		WHERE id = $1
	`

	var e blocklist.Entry
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.PhoneNumber, &e.Reason, &e.PatternType, &e.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blocklist entry: %w", err)
	}
	return &e, nil
}

// Create stores a new blacklist entry.
func (r *BlocklistRepository) Create(ctx context.Context, e *blocklist.Entry) error {
	query := `
		INSERT INTO blocklist_entries (id, phone_number, reason, pattern_type, added_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, e.ID, e.PhoneNumber, e.Reason, e.PatternType, e.AddedAt); err != nil {
		if IsDuplicateKeyViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create blocklist entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *BlocklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blocklist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blocklist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
