package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m5cents/call-screening-backend/internal/domain/contact"
)

// ContactRepository implements whitelist storage on PostgreSQL.
type ContactRepository struct {
	db *pgxpool.Pool
}

// NewContactRepository creates a contact repository.
func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns all contacts ordered by creation time.
func (r *ContactRepository) List(ctx context.Context) ([]*contact.Contact, error) {
	query := `
		SELECT id, name, phone_number, created_at
		FROM contacts
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*contact.Contact
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Number, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// GetByID retrieves one contact.
func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*contact.Contact, error) {
	query := `
		SELECT id, name, phone_number, created_at
		FROM contacts
		WHERE id = $1
	`

	var c contact.Contact
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Number, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// Create stores a new contact. Numbers are unique after normalization.
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	query := `
		INSERT INTO contacts (id, name, phone_number, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Number, c.CreatedAt); err != nil {
		if IsDuplicateKeyViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Delete removes a contact.
func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
