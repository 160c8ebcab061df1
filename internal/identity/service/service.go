package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"autoquote/internal/audit"
	"autoquote/internal/identity/device"
	identityemail "autoquote/internal/identity/email"
	"autoquote/internal/identity/metrics"
	"autoquote/internal/identity/models"
	"autoquote/internal/identity/store/role"
	"autoquote/internal/identity/store/rolecache"
	"autoquote/internal/identity/store/session"
	"autoquote/internal/identity/store/user"
	"autoquote/internal/platform/tracer"
	dErrors "autoquote/pkg/domain-errors"
	"autoquote/pkg/platform/sentinel"
)

const defaultSessionTTL = 24 * time.Hour

// TokenGenerator mints access tokens for newly created sessions.
type TokenGenerator interface {
	GenerateAccessToken(userID uuid.UUID, sessionID uuid.UUID) (string, string, error)
}

// Mailer is the slice of the email module the identity service needs for
// password reset dispatch.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// AuditPublisher emits audit events for sign-in activity.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service owns sessions, role resolution, and the auth event stream.
type Service struct {
	users    user.Store
	roles    role.Store
	sessions session.Store
	cache    rolecache.Cache

	jwt            TokenGenerator
	mailer         Mailer
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         tracer.Tracer

	sessionTTL    time.Duration
	resetRedirect string
	now           func() time.Time

	subMu       sync.Mutex
	subscribers map[int]chan models.SessionEvent
	nextSubID   int
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithJWTService(jwtService TokenGenerator) Option {
	return func(s *Service) { s.jwt = jwtService }
}

func WithMailer(mailer Mailer) Option {
	return func(s *Service) { s.mailer = mailer }
}

func WithRoleCache(cache rolecache.Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithSessionTTL configures the time-to-live duration for sessions.
// If not set or set to zero/negative, defaults to 24 hours.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithResetRedirect sets the redirect URL embedded in password reset emails.
func WithResetRedirect(url string) Option {
	return func(s *Service) { s.resetRedirect = url }
}

// WithClock overrides the service clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users user.Store, roles role.Store, sessions session.Store, opts ...Option) *Service {
	svc := &Service{
		users:       users,
		roles:       roles,
		sessions:    sessions,
		sessionTTL:  defaultSessionTTL,
		now:         time.Now,
		subscribers: make(map[int]chan models.SessionEvent),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.cache == nil {
		svc.cache = rolecache.NewMemory(5 * time.Minute)
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.sessionTTL <= 0 {
		svc.sessionTTL = defaultSessionTTL
	}
	return svc
}

// SignInCommand carries credentials plus request metadata.
type SignInCommand struct {
	Email     string
	Password  string
	UserAgent string
}

// SignInResult is returned on successful authentication.
type SignInResult struct {
	Token   string
	Session *models.Session
	User    *models.User
}

// SignIn verifies credentials, creates a session, and mints an access token.
func (s *Service) SignIn(ctx context.Context, cmd SignInCommand) (*SignInResult, error) {
	email := strings.TrimSpace(strings.ToLower(cmd.Email))
	if !identityemail.IsValidEmail(email) {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}

	found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incrementSignInFailure()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(cmd.Password)) != nil {
		s.incrementSignInFailure()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	sess := &models.Session{
		ID:                uuid.New(),
		UserID:            found.ID,
		DeviceDisplayName: device.ParseUserAgent(cmd.UserAgent),
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	var token string
	if s.jwt != nil {
		token, _, err = s.jwt.GenerateAccessToken(found.ID, sess.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint access token")
		}
	}

	s.logAudit(ctx, string(audit.EventUserSignedIn), found.ID.String(), "session "+sess.ID.String())
	if s.metrics != nil {
		s.metrics.SignIns.Inc()
		s.metrics.ActiveSessions.Inc()
	}
	s.notify(models.SessionEvent{
		Type:      models.SessionSignedIn,
		UserID:    found.ID,
		SessionID: sess.ID,
		At:        now,
	})

	return &SignInResult{Token: token, Session: sess, User: found}, nil
}

// SignOut revokes the session and notifies subscribers. Revoking an already
// revoked or missing session is not an error for the caller.
func (s *Service) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	now := s.now()
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up session")
	}

	if err := s.sessions.Revoke(ctx, sessionID, now); err != nil {
		if errors.Is(err, session.ErrSessionRevoked) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	// A sign-out invalidates the cached resolution for that user.
	s.cache.Invalidate(ctx, sess.UserID)

	s.logAudit(ctx, string(audit.EventUserSignedOut), sess.UserID.String(), "session "+sessionID.String())
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	s.notify(models.SessionEvent{
		Type:      models.SessionSignedOut,
		UserID:    sess.UserID,
		SessionID: sessionID,
		At:        now,
	})
	return nil
}

// Subscribe registers for sign-in/out notifications. The returned function
// unsubscribes and closes the channel. Slow subscribers drop events rather
// than blocking the auth path.
func (s *Service) Subscribe() (<-chan models.SessionEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.SessionEvent, 16)
	s.subscribers[id] = ch

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

func (s *Service) notify(event models.SessionEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Buffer full; drop instead of blocking sign-in/out.
		}
	}
}

// RequestPasswordReset dispatches a reset email with the configured redirect.
// An unknown address is reported as success to avoid account enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr, redirectURL string) error {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	if !identityemail.IsValidEmail(emailAddr) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if s.mailer == nil {
		return dErrors.New(dErrors.CodeUnavailable, "email dispatch not configured")
	}
	if redirectURL == "" {
		redirectURL = s.resetRedirect
	}

	found, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	resetToken := uuid.New().String()
	link := redirectURL + "?token=" + resetToken
	html := "<p>Hi " + found.FirstName + ",</p><p>Reset your AutoQuote password by following <a href=\"" + link + "\">this link</a>.</p>"

	if err := s.mailer.Send(ctx, []string{found.Email}, "Reset your AutoQuote password", html); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send reset email")
	}

	s.logAudit(ctx, string(audit.EventPasswordResetRequest), found.ID.String(), "")
	if s.metrics != nil {
		s.metrics.PasswordResetsSent.Inc()
	}
	return nil
}

// PersistedRole reports the stored role for middleware admin gating. A missing
// role row maps to the default user role. View-mode overrides never reach
// this path.
func (s *Service) PersistedRole(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	persisted, err := s.roles.FindByUser(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return string(models.RoleUser), nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "role lookup failed")
	}
	return string(persisted), nil
}

func (s *Service) logAudit(ctx context.Context, action, userID, reason string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID: userID,
		Action: action,
		Reason: reason,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) incrementSignInFailure() {
	if s.metrics != nil {
		s.metrics.SignInFailures.Inc()
	}
}
