// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"     validate:"required,email,max=255"`
	Password string `json:"password"  validate:"required,max=128"`
	UserType string `json:"user_type" validate:"required,oneof=consumer business"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest may be empty; without a refresh token only the access
// token is blacklisted.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Account is the caller as seen by /auth/me. Stall owners also get the
// license their token is bound to.
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	UserType      string    `json:"user_type"`
	LicenseNumber string    `json:"license_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func accountOf(id *Identity) Account {
	return Account{
		ID:            id.UserID,
		Email:         id.Email,
		Username:      id.Username,
		UserType:      id.UserType,
		LicenseNumber: id.LicenseNumber,
		CreatedAt:     id.CreatedAt,
	}
}

type AuthResponse struct {
	User   Account       `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type SessionView struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	SignedInAt time.Time `json:"signed_in_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func viewOf(s *Session) SessionView {
	return SessionView{
		ID:         s.ID,
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		SignedInAt: s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}

type SessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
}
