package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"autoquote/internal/coupon/models"
	"autoquote/pkg/platform/sentinel"
)

// PostgresStore persists coupons in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed coupon store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon == nil {
		return fmt.Errorf("coupon is required")
	}
	query := `
		INSERT INTO coupons (id, code, name, description, discount_type, discount_value,
			usage_limit, expires_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Name,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.UsageLimit,
		coupon.ExpiresAt,
		coupon.CreatedAt,
		coupon.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("coupon code taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := couponSelect + ` WHERE lower(code) = lower($1)`
	coupon, err := scanCoupon(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return coupon, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, couponSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var out []*models.Coupon
	for rows.Next() {
		var coupon models.Coupon
		if err := rows.Scan(
			&coupon.ID,
			&coupon.Code,
			&coupon.Name,
			&coupon.Description,
			&coupon.DiscountType,
			&coupon.DiscountValue,
			&coupon.UsageLimit,
			&coupon.ExpiresAt,
			&coupon.CreatedAt,
			&coupon.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		out = append(out, &coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return out, nil
}

const couponSelect = `
	SELECT id, code, name, description, discount_type, discount_value,
		usage_limit, expires_at, created_at, created_by
	FROM coupons
`

func scanCoupon(row *sql.Row) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Name,
		&coupon.Description,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.UsageLimit,
		&coupon.ExpiresAt,
		&coupon.CreatedAt,
		&coupon.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Verify interface is satisfied.
var _ Store = (*PostgresStore)(nil)
