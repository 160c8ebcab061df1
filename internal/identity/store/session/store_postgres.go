package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/pkg/platform/sentinel"
)

// PostgresStore persists sessions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed session store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	query := `
		INSERT INTO sessions (id, user_id, device_display_name, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceDisplayName,
		session.CreatedAt,
		session.ExpiresAt,
		nullTime(session.RevokedAt),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := `
		SELECT id, user_id, device_display_name, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session models.Session
	var revokedAt sql.NullTime
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.DeviceDisplayName,
		&session.CreatedAt,
		&session.ExpiresAt,
		&revokedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}
	return &session, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, sessionID uuid.UUID, now time.Time) error {
	query := `
		UPDATE sessions
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, sessionID, now)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke session rows: %w", err)
	}
	if rows == 0 {
		// Distinguish missing from already revoked so callers can report accurately.
		if _, findErr := s.FindByID(ctx, sessionID); findErr != nil {
			return findErr
		}
		return ErrSessionRevoked
	}
	return nil
}

// DeleteExpired removes all sessions that have expired as of the given time.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows: %w", err)
	}
	return int(rows), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Verify interface is satisfied.
var _ Store = (*PostgresStore)(nil)
