// AngelaMos | 2026
// dto.go

package review

import (
	"math"
	"time"
)

type CreateRequest struct {
	TargetType  string   `json:"target_type"  validate:"required,oneof=business hawker"`
	TargetID    string   `json:"target_id"    validate:"required,max=100"`
	StarRating  int      `json:"star_rating"  validate:"required,min=1,max=5"`
	Description string   `json:"description"  validate:"maxrunes=250"`
	Images      []string `json:"images"       validate:"max=10,dive,max=500"`
}

type UpdateRequest struct {
	StarRating  *int      `json:"star_rating" validate:"omitempty,min=1,max=5"`
	Description *string   `json:"description" validate:"omitempty,maxrunes=250"`
	Images      *[]string `json:"images"      validate:"omitempty,max=10,dive,max=500"`
}

type ReviewResponse struct {
	ID          string    `json:"id"`
	ConsumerID  string    `json:"consumer_id"`
	Username    string    `json:"username"`
	TargetType  string    `json:"target_type"`
	TargetID    string    `json:"target_id"`
	StarRating  int       `json:"star_rating"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RatingResponse struct {
	TargetType string   `json:"target_type"`
	TargetID   string   `json:"target_id"`
	Average    *float64 `json:"average"`
	Count      int      `json:"count"`
}

func ToReviewResponse(rv *Review) ReviewResponse {
	images := []string(rv.Images)
	if images == nil {
		images = []string{}
	}

	return ReviewResponse{
		ID:          rv.ID,
		ConsumerID:  rv.ConsumerID,
		Username:    rv.Username,
		TargetType:  string(rv.TargetType),
		TargetID:    rv.TargetID,
		StarRating:  rv.StarRating,
		Description: rv.Description,
		Images:      images,
		CreatedAt:   rv.CreatedAt,
		UpdatedAt:   rv.UpdatedAt,
	}
}

func ToReviewResponses(list []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(list))
	for i := range list {
		out = append(out, ToReviewResponse(&list[i]))
	}
	return out
}

// ToRatingResponse rounds the average to two places for display.
func ToRatingResponse(targetType, targetID string, rating *Rating) RatingResponse {
	resp := RatingResponse{
		TargetType: targetType,
		TargetID:   targetID,
		Count:      rating.Count,
	}
	if rating.Average != nil {
		avg := math.Round(*rating.Average*100) / 100
		resp.Average = &avg
	}
	return resp
}
