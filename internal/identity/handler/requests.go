package handler

import (
	"strings"

	identityemail "autoquote/internal/identity/email"
	dErrors "autoquote/pkg/domain-errors"
)

// SignInRequest is the POST /auth/sign-in body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
}

func (r *SignInRequest) Validate() error {
	if !identityemail.IsValidEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// PasswordResetRequest is the POST /auth/password-reset body.
type PasswordResetRequest struct {
	Email       string `json:"email"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

func (r *PasswordResetRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.RedirectURL = strings.TrimSpace(r.RedirectURL)
}

func (r *PasswordResetRequest) Validate() error {
	if !identityemail.IsValidEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	return nil
}
