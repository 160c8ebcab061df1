package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Subject   string
	Action    string
	Reason    string
}

type AuditEvent string

const (
	EventUserSignedIn          AuditEvent = "user_signed_in"
	EventUserSignedOut         AuditEvent = "user_signed_out"
	EventQuoteCreated          AuditEvent = "quote_created"
	EventQuoteDroppedInvalid   AuditEvent = "quote_dropped_invalid"
	EventDealerQuoteAccepted   AuditEvent = "dealer_quote_accepted"
	EventCouponCreated         AuditEvent = "coupon_created"
	EventSubscriptionUpdated   AuditEvent = "subscription_updated"
	EventSubscriptionCancelled AuditEvent = "subscription_cancelled"
	EventEmailScheduled        AuditEvent = "email_scheduled"
	EventEmailSent             AuditEvent = "email_sent"
	EventPasswordResetRequest  AuditEvent = "password_reset_requested"
)
