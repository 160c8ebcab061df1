package handler

import (
	"time"

	"autoquote/internal/quote/models"
)

// QuoteResponse is a validated quote over HTTP. CarDetails carries the
// display string from the formatting utility, never the raw payload.
type QuoteResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	CarDetails   string                `json:"car_details"`
	CreatedAt    time.Time             `json:"created_at"`
	DealerQuotes []DealerQuoteResponse `json:"dealer_quotes"`
}

type DealerQuoteResponse struct {
	ID            string     `json:"id"`
	DealerName    string     `json:"dealer_name,omitempty"`
	Status        string     `json:"status"`
	PriceCents    int64      `json:"price_cents"`
	ResponseNotes string     `json:"response_notes,omitempty"`
	Accepted      bool       `json:"accepted"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

// ListResponse surfaces the dropped-record count alongside the quotes so a
// data problem is visible to API consumers, not only in the log.
type ListResponse struct {
	Quotes  []QuoteResponse `json:"quotes"`
	Dropped int             `json:"dropped_records"`
}

func toQuoteResponse(q *models.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:           q.ID.String(),
		Status:       string(q.Status),
		CarDetails:   models.FormatCarDetails(q.RawCarDetails),
		CreatedAt:    q.CreatedAt,
		DealerQuotes: make([]DealerQuoteResponse, 0, len(q.DealerQuotes)),
	}
	for _, dq := range q.DealerQuotes {
		resp.DealerQuotes = append(resp.DealerQuotes, toDealerQuoteResponse(&dq))
	}
	return resp
}

func toDealerQuoteResponse(dq *models.DealerQuote) DealerQuoteResponse {
	return DealerQuoteResponse{
		ID:            dq.ID.String(),
		DealerName:    dq.DealerName,
		Status:        string(dq.Status),
		PriceCents:    dq.PriceCents,
		ResponseNotes: dq.ResponseNotes,
		Accepted:      dq.Accepted,
		RespondedAt:   dq.RespondedAt,
	}
}

func toListResponse(result *models.ListResult) *ListResponse {
	resp := &ListResponse{
		Quotes:  make([]QuoteResponse, 0, len(result.Quotes)),
		Dropped: result.Dropped,
	}
	for _, q := range result.Quotes {
		resp.Quotes = append(resp.Quotes, toQuoteResponse(q))
	}
	return resp
}
