package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuoteStatus tracks the buyer-side lifecycle of a quote request.
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusResponded QuoteStatus = "responded"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusClosed    QuoteStatus = "closed"
)

// DealerQuoteStatus tracks a single dealer's response.
type DealerQuoteStatus string

const (
	DealerQuoteStatusPending   DealerQuoteStatus = "pending"
	DealerQuoteStatusResponded DealerQuoteStatus = "responded"
	DealerQuoteStatusDeclined  DealerQuoteStatus = "declined"
)

// Quote is a buyer's request for dealer offers on a vehicle. RawCarDetails is
// stored as received; Details is populated only after validation, and a quote
// whose payload fails validation never leaves the service layer.
type Quote struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	RawCarDetails json.RawMessage
	Details       *CarDetails
	Status        QuoteStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DealerQuotes  []DealerQuote
}

// DealerQuote is one dealer's response, belonging to exactly one quote.
type DealerQuote struct {
	ID            uuid.UUID
	QuoteID       uuid.UUID
	DealerID      uuid.UUID
	DealerName    string
	Status        DealerQuoteStatus
	PriceCents    int64
	ResponseNotes string
	Accepted      bool
	CreatedAt     time.Time
	RespondedAt   *time.Time
}

// ListResult is an ordered, validated view of a user's quotes. Dropped counts
// the records excluded by car-details validation so data problems are visible
// to callers instead of only to the log.
type ListResult struct {
	Quotes  []*Quote
	Dropped int
}
