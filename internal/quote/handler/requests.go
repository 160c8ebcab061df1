package handler

import (
	"encoding/json"
	"strings"

	dErrors "autoquote/pkg/domain-errors"
)

// CreateQuoteRequest is the POST /quotes body. CarDetails is passed through
// raw; the service owns validation so rejection reasons come from one place.
type CreateQuoteRequest struct {
	CarDetails json.RawMessage `json:"car_details"`
}

func (r *CreateQuoteRequest) Validate() error {
	if len(r.CarDetails) == 0 {
		return dErrors.New(dErrors.CodeValidation, "car_details is required")
	}
	return nil
}

// RespondRequest is the POST /quotes/{id}/responses body.
type RespondRequest struct {
	PriceCents    int64  `json:"price_cents"`
	ResponseNotes string `json:"response_notes,omitempty"`
}

func (r *RespondRequest) Normalize() {
	r.ResponseNotes = strings.TrimSpace(r.ResponseNotes)
}

func (r *RespondRequest) Validate() error {
	if r.PriceCents <= 0 {
		return dErrors.New(dErrors.CodeValidation, "price_cents must be positive")
	}
	return nil
}
