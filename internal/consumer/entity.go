// AngelaMos | 2026
// entity.go

package consumer

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

type Consumer struct {
	UserID         string         `db:"user_id"`
	Email          string         `db:"email"`
	Username       string         `db:"username"`
	ProfilePhoto   *string        `db:"profile_photo"`
	RecentSearches pq.StringArray `db:"recent_searches"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// pushRecent moves term to the front, drops any earlier case-insensitive
// duplicate and keeps at most limit entries.
func pushRecent(list []string, term string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, term)

	for _, s := range list {
		if len(out) >= limit {
			break
		}
		if strings.EqualFold(s, term) {
			continue
		}
		out = append(out, s)
	}

	return out
}
