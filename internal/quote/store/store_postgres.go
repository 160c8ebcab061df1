package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"autoquote/internal/quote/models"
	"autoquote/pkg/platform/sentinel"
)

// PostgresStore persists quotes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed quote store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, quote *models.Quote) error {
	if quote == nil {
		return fmt.Errorf("quote is required")
	}
	query := `
		INSERT INTO quotes (id, user_id, car_details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		quote.ID,
		quote.UserID,
		[]byte(quote.RawCarDetails),
		quote.Status,
		quote.CreatedAt,
		quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quotes, err := s.query(ctx, quoteJoin+` WHERE q.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find quote by id: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("quote not found: %w", sentinel.ErrNotFound)
	}
	return quotes[0], nil
}

// ListByUser joins quotes with dealer responses and dealer display names in a
// single round trip. No ORDER BY on purpose: the service enforces the
// newest-first contract itself.
func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Quote, error) {
	quotes, err := s.query(ctx, quoteJoin+` WHERE q.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.QuoteStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quotes SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote status rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quote not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) AddDealerQuote(ctx context.Context, dq *models.DealerQuote) error {
	if dq == nil {
		return fmt.Errorf("dealer quote is required")
	}
	query := `
		INSERT INTO dealer_quotes (id, quote_id, dealer_id, status, price_cents,
			response_notes, accepted, created_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		dq.ID,
		dq.QuoteID,
		dq.DealerID,
		dq.Status,
		dq.PriceCents,
		dq.ResponseNotes,
		dq.Accepted,
		dq.CreatedAt,
		dq.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("add dealer quote: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindDealerQuote(ctx context.Context, id uuid.UUID) (*models.DealerQuote, error) {
	query := `
		SELECT dq.id, dq.quote_id, dq.dealer_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
			dq.status, dq.price_cents, dq.response_notes, dq.accepted, dq.created_at, dq.responded_at
		FROM dealer_quotes dq
		LEFT JOIN users u ON u.id = dq.dealer_id
		WHERE dq.id = $1
	`
	var dq models.DealerQuote
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&dq.ID,
		&dq.QuoteID,
		&dq.DealerID,
		&dq.DealerName,
		&dq.Status,
		&dq.PriceCents,
		&dq.ResponseNotes,
		&dq.Accepted,
		&dq.CreatedAt,
		&dq.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dealer quote not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find dealer quote: %w", err)
	}
	return &dq, nil
}

func (s *PostgresStore) UpdateDealerQuote(ctx context.Context, dq *models.DealerQuote) error {
	if dq == nil {
		return fmt.Errorf("dealer quote is required")
	}
	query := `
		UPDATE dealer_quotes
		SET status = $2, price_cents = $3, response_notes = $4, accepted = $5, responded_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		dq.ID, dq.Status, dq.PriceCents, dq.ResponseNotes, dq.Accepted, dq.RespondedAt)
	if err != nil {
		return fmt.Errorf("update dealer quote: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update dealer quote rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("dealer quote not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

const quoteJoin = `
	SELECT q.id, q.user_id, q.car_details, q.status, q.created_at, q.updated_at,
		dq.id, dq.dealer_id, COALESCE(u.first_name || ' ' || u.last_name, ''),
		dq.status, dq.price_cents, dq.response_notes, dq.accepted, dq.created_at, dq.responded_at
	FROM quotes q
	LEFT JOIN dealer_quotes dq ON dq.quote_id = q.id
	LEFT JOIN users u ON u.id = dq.dealer_id
`

// query runs a quoteJoin variant and folds the flattened rows back into
// quotes with embedded dealer responses.
func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Quote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Quote)
	var out []*models.Quote
	for rows.Next() {
		var (
			q         models.Quote
			raw       []byte
			dqID      sql.Null[uuid.UUID]
			dealerID  sql.Null[uuid.UUID]
			dealer    sql.NullString
			dqStatus  sql.NullString
			price     sql.NullInt64
			notes     sql.NullString
			accepted  sql.NullBool
			dqCreated sql.NullTime
			responded sql.NullTime
		)
		if err := rows.Scan(
			&q.ID, &q.UserID, &raw, &q.Status, &q.CreatedAt, &q.UpdatedAt,
			&dqID, &dealerID, &dealer, &dqStatus, &price, &notes, &accepted, &dqCreated, &responded,
		); err != nil {
			return nil, err
		}

		quote, seen := byID[q.ID]
		if !seen {
			q.RawCarDetails = raw
			quote = &q
			byID[q.ID] = quote
			out = append(out, quote)
		}
		if dqID.Valid {
			dq := models.DealerQuote{
				ID:            dqID.V,
				QuoteID:       quote.ID,
				DealerID:      dealerID.V,
				DealerName:    dealer.String,
				Status:        models.DealerQuoteStatus(dqStatus.String),
				PriceCents:    price.Int64,
				ResponseNotes: notes.String,
				Accepted:      accepted.Bool,
				CreatedAt:     dqCreated.Time,
			}
			if responded.Valid {
				t := responded.Time
				dq.RespondedAt = &t
			}
			quote.DealerQuotes = append(quote.DealerQuotes, dq)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify interface is satisfied.
var _ Store = (*PostgresStore)(nil)
