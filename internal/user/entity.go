// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// Kind tags which subtype row (consumers or businesses) shares the user id.
type Kind string

const (
	KindConsumer Kind = "consumer"
	KindBusiness Kind = "business"
)

func (k Kind) Valid() bool {
	return k == KindConsumer || k == KindBusiness
}

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Username     string    `db:"username"`
	Kind         Kind      `db:"user_type"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
