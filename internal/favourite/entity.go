// AngelaMos | 2026
// entity.go

package favourite

import (
	"time"

	"github.com/hawkersg/hawker-backend/internal/target"
)

type Favourite struct {
	ID         string      `db:"id"`
	ConsumerID string      `db:"consumer_id"`
	TargetType target.Type `db:"target_type"`
	TargetID   string      `db:"target_id"`
	CreatedAt  time.Time   `db:"created_at"`
}

func (f Favourite) Target() target.Ref {
	return target.Ref{Type: f.TargetType, ID: f.TargetID}
}

// Action is the outcome of a toggle.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)
