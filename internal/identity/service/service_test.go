package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	dErrors "autoquote/pkg/domain-errors"
)

type captureMailer struct {
	to      []string
	subject string
	html    string
	err     error
	calls   int
}

func (m *captureMailer) Send(_ context.Context, to []string, subject, html string) error {
	m.calls++
	m.to = to
	m.subject = subject
	m.html = html
	return m.err
}

func (s *ServiceSuite) TestSignInSuccess() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")

	result, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "Buyer@Example.com",
		Password: "hunter2-long",
	})
	s.Require().NoError(err)
	s.Equal(seeded.ID, result.User.ID)
	s.Equal(seeded.ID, result.Session.UserID)
	s.Equal(s.now.Add(2*time.Hour), result.Session.ExpiresAt)
}

func (s *ServiceSuite) TestSignInWrongPassword() {
	s.seedUser("buyer@example.com", "hunter2-long")

	_, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "buyer@example.com",
		Password: "not-the-password",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestSignInUnknownEmailSameError() {
	// Unknown address and wrong password must be indistinguishable.
	_, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestSignInRejectsMalformedEmail() {
	_, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "not-an-email",
		Password: "whatever",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSignOutRevokesAndInvalidatesCache() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	result, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "buyer@example.com",
		Password: "hunter2-long",
	})
	s.Require().NoError(err)

	// Warm the cache through a resolution, then sign out.
	_, err = s.service.Resolve(context.Background(), result.Session.ID, models.ViewModeNone)
	s.Require().NoError(err)
	_, cached := s.cache.Get(context.Background(), seeded.ID)
	s.True(cached)

	s.Require().NoError(s.service.SignOut(context.Background(), result.Session.ID))

	_, cached = s.cache.Get(context.Background(), seeded.ID)
	s.False(cached)

	res, err := s.service.Resolve(context.Background(), result.Session.ID, models.ViewModeNone)
	s.Require().NoError(err)
	s.Equal(models.RoleNone, res.Role)
}

func (s *ServiceSuite) TestSignOutUnknownSessionIsNoop() {
	s.NoError(s.service.SignOut(context.Background(), uuid.New()))
}

func (s *ServiceSuite) TestSignOutTwiceIsNoop() {
	s.seedUser("buyer@example.com", "hunter2-long")
	result, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "buyer@example.com",
		Password: "hunter2-long",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.SignOut(context.Background(), result.Session.ID))
	s.NoError(s.service.SignOut(context.Background(), result.Session.ID))
}

func (s *ServiceSuite) TestSubscribeReceivesSignInAndSignOut() {
	s.seedUser("buyer@example.com", "hunter2-long")
	events, unsubscribe := s.service.Subscribe()
	defer unsubscribe()

	result, err := s.service.SignIn(context.Background(), SignInCommand{
		Email:    "buyer@example.com",
		Password: "hunter2-long",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.service.SignOut(context.Background(), result.Session.ID))

	first := <-events
	s.Equal(models.SessionSignedIn, first.Type)
	s.Equal(result.Session.ID, first.SessionID)

	second := <-events
	s.Equal(models.SessionSignedOut, second.Type)
	s.Equal(result.Session.ID, second.SessionID)
}

func (s *ServiceSuite) TestUnsubscribeClosesChannel() {
	events, unsubscribe := s.service.Subscribe()
	unsubscribe()
	_, open := <-events
	s.False(open)

	// Unsubscribing twice must not panic.
	unsubscribe()
}

func (s *ServiceSuite) TestRequestPasswordResetSendsEmail() {
	seeded := s.seedUser("buyer@example.com", "hunter2-long")
	mailer := &captureMailer{}
	s.service.mailer = mailer
	s.service.resetRedirect = "https://autoquote.example/reset"

	err := s.service.RequestPasswordReset(context.Background(), "buyer@example.com", "")
	s.Require().NoError(err)
	s.Equal(1, mailer.calls)
	s.Equal([]string{seeded.Email}, mailer.to)
	s.Contains(mailer.html, "https://autoquote.example/reset?token=")
}

func (s *ServiceSuite) TestRequestPasswordResetUnknownEmailSucceeds() {
	mailer := &captureMailer{}
	s.service.mailer = mailer

	s.NoError(s.service.RequestPasswordReset(context.Background(), "nobody@example.com", ""))
	s.Zero(mailer.calls)
}

func (s *ServiceSuite) TestRequestPasswordResetProviderFailure() {
	s.seedUser("buyer@example.com", "hunter2-long")
	mailer := &captureMailer{err: errors.New("provider down")}
	s.service.mailer = mailer

	err := s.service.RequestPasswordReset(context.Background(), "buyer@example.com", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestPersistedRoleIgnoresViewMode() {
	seeded := s.seedUser("dash@example.com", "hunter2-long")
	s.Require().NoError(s.roles.Assign(context.Background(), seeded.ID, models.RoleUser))

	// The middleware path reads the stored role only; no view-mode parameter
	// even exists on it.
	got, err := s.service.PersistedRole(context.Background(), seeded.ID.String())
	s.Require().NoError(err)
	s.Equal("user", got)
}

func (s *ServiceSuite) TestPersistedRoleDefaultsToUser() {
	seeded := s.seedUser("dash@example.com", "hunter2-long")

	got, err := s.service.PersistedRole(context.Background(), seeded.ID.String())
	s.Require().NoError(err)
	s.Equal("user", got)
}

func (s *ServiceSuite) TestPersistedRoleLookupFailure() {
	seeded := s.seedUser("dash@example.com", "hunter2-long")
	s.roles.FailNext(fmt.Errorf("connection refused"), 1)

	_, err := s.service.PersistedRole(context.Background(), seeded.ID.String())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
