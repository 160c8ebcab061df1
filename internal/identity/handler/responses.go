package handler

import (
	"time"

	"autoquote/internal/identity/models"
)

// SignInResponse carries the minted token plus session metadata.
type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	SessionID   string       `json:"session_id"`
	User        UserResponse `json:"user"`
}

// UserResponse is the profile slice exposed over HTTP.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// MeResponse is the resolved identity for the current request.
type MeResponse struct {
	Role       string        `json:"role"`
	User       *UserResponse `json:"user,omitempty"`
	Overridden bool          `json:"view_mode_overridden,omitempty"`
}

func toUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toMeResponse(res *models.Resolution) *MeResponse {
	return &MeResponse{
		Role:       string(res.Role),
		User:       toUserResponse(res.User),
		Overridden: res.Overridden,
	}
}
