// AngelaMos | 2026
// entity.go

package review

import (
	"time"

	"github.com/lib/pq"

	"github.com/hawkersg/hawker-backend/internal/target"
)

const (
	MinRating         = 1
	MaxRating         = 5
	MaxDescriptionLen = 250
	MaxImages         = 10
)

type Review struct {
	ID          string         `db:"id"`
	ConsumerID  string         `db:"consumer_id"`
	Username    string         `db:"username"`
	TargetType  target.Type    `db:"target_type"`
	TargetID    string         `db:"target_id"`
	StarRating  int            `db:"star_rating"`
	Description string         `db:"description"`
	Images      pq.StringArray `db:"images"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Rating summarises a target's reviews. Average is nil when Count is 0.
type Rating struct {
	Average *float64
	Count   int
}
