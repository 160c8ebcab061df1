package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of marketplace permission roles.
type Role string

const (
	// RoleNone is returned when no authenticated session exists. It is a
	// valid resolution result, not an error.
	RoleNone   Role = "none"
	RoleUser   Role = "user"
	RoleDealer Role = "dealer"
	RoleAdmin  Role = "admin"
)

// ParseRole maps persisted role values onto the enum, defaulting to user for
// anything unrecognized so a corrupt row never widens permissions.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleDealer:
		return RoleDealer
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// ViewMode is a per-request role override used by privileged users to preview
// the marketplace as another role. It is a UI convenience carried as an
// explicit parameter; it is never an authorization boundary and the admin
// gate ignores it entirely.
type ViewMode string

const (
	ViewModeNone   ViewMode = ""
	ViewModeDealer ViewMode = "dealer"
	ViewModeAdmin  ViewMode = "admin"
)

// ParseViewMode accepts only the dealer and admin overrides; everything else
// means no override.
func ParseViewMode(s string) ViewMode {
	switch ViewMode(s) {
	case ViewModeDealer:
		return ViewModeDealer
	case ViewModeAdmin:
		return ViewModeAdmin
	default:
		return ViewModeNone
	}
}

// Apply returns the effective role after the override.
func (v ViewMode) Apply(persisted Role) Role {
	switch v {
	case ViewModeDealer:
		return RoleDealer
	case ViewModeAdmin:
		return RoleAdmin
	default:
		return persisted
	}
}

// User is a marketplace profile. Subscription fields are owned by the billing
// webhook flow.
type User struct {
	ID                 uuid.UUID
	Email              string
	FirstName          string
	LastName           string
	PasswordHash       string
	SubscriptionPlan   string
	SubscriptionStatus string
	BillingCustomerID  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Subscription defaults applied when a subscription is cancelled.
const (
	PlanBasic                  = "basic"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusActive   = "active"
)

// Session is an authenticated sign-in. Sessions are referenced by access
// tokens and revoked on sign-out.
type Session struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	DeviceDisplayName string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	RevokedAt         *time.Time
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.RevokedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// Resolution is the outcome of role resolution: the effective role plus the
// profile merged onto the session identity.
type Resolution struct {
	Role       Role
	User       *User
	FromCache  bool
	Overridden bool
}

// SessionEventType distinguishes sign-in from sign-out notifications.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent is delivered to auth state subscribers.
type SessionEvent struct {
	Type      SessionEventType
	UserID    uuid.UUID
	SessionID uuid.UUID
	At        time.Time
}
