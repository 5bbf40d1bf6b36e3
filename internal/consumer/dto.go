// AngelaMos | 2026
// dto.go

package consumer

import (
	"time"
)

type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Username string `json:"username" validate:"required,min=1,max=50"`
}

// UpdateProfileRequest takes the photo as a base64 data URI.
type UpdateProfileRequest struct {
	Username     *string `json:"username"      validate:"omitempty,min=1,max=50"`
	ProfilePhoto *string `json:"profile_photo"`
	RemovePhoto  bool    `json:"remove_photo"`
}

type RecentSearchRequest struct {
	Term string `json:"term" validate:"max=200"`
}

type RecentSearchesResponse struct {
	RecentSearches []string `json:"recent_searches"`
}

type ConsumerResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	UserType       string    `json:"user_type"`
	ProfilePhoto   *string   `json:"profile_photo"`
	RecentSearches []string  `json:"recent_searches"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToConsumerResponse(c *Consumer) ConsumerResponse {
	searches := []string(c.RecentSearches)
	if searches == nil {
		searches = []string{}
	}

	return ConsumerResponse{
		ID:             c.UserID,
		Email:          c.Email,
		Username:       c.Username,
		UserType:       "consumer",
		ProfilePhoto:   c.ProfilePhoto,
		RecentSearches: searches,
		CreatedAt:      c.CreatedAt,
	}
}
