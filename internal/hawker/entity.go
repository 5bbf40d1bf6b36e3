// AngelaMos | 2026
// entity.go

package hawker

import (
	"time"
)

type Centre struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	StallCount int       `db:"stall_count"`
	CreatedAt  time.Time `db:"created_at"`
}
