// AngelaMos | 2026
// dto.go

package favourite

import (
	"time"
)

type TargetRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=business hawker"`
	TargetID   string `json:"target_id"   validate:"required,max=100"`
}

type FavouriteResponse struct {
	ID         string    `json:"id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type AddResponse struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Added      bool   `json:"added"`
}

type ToggleResponse struct {
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	Action      Action `json:"action"`
	IsFavourite bool   `json:"is_favourite"`
}

type StatusResponse struct {
	IsFavourite bool `json:"is_favourite"`
}

func ToFavouriteResponses(list []Favourite) []FavouriteResponse {
	out := make([]FavouriteResponse, 0, len(list))
	for _, f := range list {
		out = append(out, FavouriteResponse{
			ID:         f.ID,
			TargetType: string(f.TargetType),
			TargetID:   f.TargetID,
			CreatedAt:  f.CreatedAt,
		})
	}
	return out
}
