// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

const (
	UserTypeConsumer = "consumer"
	UserTypeBusiness = "business"
)

// Identity is the token-facing view of an account. LicenseNumber is set
// only for business accounts and is immutable once issued.
type Identity struct {
	UserID        string
	Email         string
	Username      string
	UserType      string
	LicenseNumber string
	CreatedAt     time.Time
}

// Session is one refresh token. Rotating it links the old row to its
// replacement; every session in a family descends from one login.
type Session struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	UserType   string     `db:"user_type"`
	TokenHash  string     `db:"token_hash"`
	FamilyID   string     `db:"family_id"`
	ExpiresAt  time.Time  `db:"expires_at"`
	CreatedAt  time.Time  `db:"created_at"`
	RotatedAt  *time.Time `db:"rotated_at"`
	ReplacedBy *string    `db:"replaced_by"`
	RevokedAt  *time.Time `db:"revoked_at"`
	UserAgent  string     `db:"user_agent"`
	IPAddress  string     `db:"ip_address"`
}

// Rotated reports a refresh token that was already exchanged. Seeing it
// again means the family leaked.
func (s *Session) Rotated() bool {
	return s.RotatedAt != nil
}

func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
