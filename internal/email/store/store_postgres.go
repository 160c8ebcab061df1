package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/email/models"
	"autoquote/pkg/platform/sentinel"
)

// PostgresStore persists scheduled emails in PostgreSQL. Recipients are kept
// as a JSONB array so the row round-trips through database/sql without an
// array codec.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed scheduled-email store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, email *models.ScheduledEmail) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}
	recipients, err := json.Marshal(email.To)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}
	query := `
		INSERT INTO scheduled_emails (id, recipients, subject, html, scheduled_for,
			status, last_error, created_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		email.ID,
		recipients,
		email.Subject,
		email.HTML,
		email.ScheduledFor,
		email.Status,
		email.LastError,
		email.CreatedAt,
		email.SentAt,
	)
	if err != nil {
		return fmt.Errorf("create scheduled email: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledEmail, error) {
	query := `
		SELECT id, recipients, subject, html, scheduled_for, status, last_error, created_at, sent_at
		FROM scheduled_emails
		WHERE status = 'pending' AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due emails: %w", err)
	}
	defer rows.Close()

	var out []*models.ScheduledEmail
	for rows.Next() {
		var (
			email      models.ScheduledEmail
			recipients []byte
		)
		if err := rows.Scan(
			&email.ID,
			&recipients,
			&email.Subject,
			&email.HTML,
			&email.ScheduledFor,
			&email.Status,
			&email.LastError,
			&email.CreatedAt,
			&email.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan scheduled email: %w", err)
		}
		if err := json.Unmarshal(recipients, &email.To); err != nil {
			return nil, fmt.Errorf("decode recipients: %w", err)
		}
		out = append(out, &email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due emails: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_emails SET status = 'sent', sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return requireRow(res, id)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_emails SET status = 'failed', last_error = $2 WHERE id = $1`, id, reason)
	if err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id uuid.UUID) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scheduled email %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

// Verify interface is satisfied.
var _ Store = (*PostgresStore)(nil)
