// Package models defines outbound email records.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an email to deliver. A nil ScheduledFor, or one in the past,
// means "send now".
type Message struct {
	To           []string
	Subject      string
	HTML         string
	ScheduledFor *time.Time
}

// ScheduledStatus tracks a persisted email through the dispatch worker.
type ScheduledStatus string

const (
	ScheduledStatusPending ScheduledStatus = "pending"
	ScheduledStatusSent    ScheduledStatus = "sent"
	ScheduledStatusFailed  ScheduledStatus = "failed"
)

// ScheduledEmail is a pending message persisted for future delivery.
type ScheduledEmail struct {
	ID           uuid.UUID
	To           []string
	Subject      string
	HTML         string
	ScheduledFor time.Time
	Status       ScheduledStatus
	LastError    string
	CreatedAt    time.Time
	SentAt       *time.Time
}
