package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	"autoquote/pkg/platform/sentinel"
)

// PostgresStore persists role assignments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed role store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
	`
	var raw string
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleNone, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
		}
		return models.RoleNone, fmt.Errorf("find role by user: %w", err)
	}
	return models.ParseRole(raw), nil
}

func (s *PostgresStore) Assign(ctx context.Context, userID uuid.UUID, role models.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, userID, string(role)); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// Verify interface is satisfied.
var _ Store = (*PostgresStore)(nil)
