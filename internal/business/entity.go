// AngelaMos | 2026
// entity.go

package business

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// StatusUnclaimed marks a seeded stall nobody has signed up for.
	StatusUnclaimed Status = ""
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
)

type Business struct {
	UserID               string     `db:"user_id"`
	Email                string     `db:"email"`
	Username             string     `db:"username"`
	LicenseNumber        string     `db:"license_number"`
	StallName            *string    `db:"stall_name"`
	LicenseeName         string     `db:"licensee_name"`
	EstablishmentAddress string     `db:"establishment_address"`
	HawkerCentre         string     `db:"hawker_centre"`
	PostalCode           string     `db:"postal_code"`
	Description          string     `db:"description"`
	Status               Status     `db:"status"`
	StatusIsTemporary    bool       `db:"status_is_temporary"`
	StatusChangedAt      *time.Time `db:"status_changed_at"`
	Photo                *string    `db:"photo"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// NeedsDailyReset reports a "closed for today" status whose calendar day
// in loc has already passed.
func (b *Business) NeedsDailyReset(now time.Time, loc *time.Location) bool {
	if !b.StatusIsTemporary || b.StatusChangedAt == nil {
		return false
	}
	return calendarDay(now, loc).After(calendarDay(*b.StatusChangedAt, loc))
}

func (b *Business) applyDailyReset(now time.Time) {
	b.Status = StatusOpen
	b.StatusIsTemporary = false
	b.StatusChangedAt = &now
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type OperatingHour struct {
	ID            string `db:"id"`
	LicenseNumber string `db:"license_number"`
	Day           string `db:"day"`
	StartTime     string `db:"start_time"`
	EndTime       string `db:"end_time"`
}

type MenuItem struct {
	ID            string          `db:"id"`
	LicenseNumber string          `db:"license_number"`
	Name          string          `db:"name"`
	Price         decimal.Decimal `db:"price"`
	Photo         *string         `db:"photo"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
