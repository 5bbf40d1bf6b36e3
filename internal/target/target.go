// AngelaMos | 2026
// target.go

package target

import (
	"fmt"
	"strings"

	"github.com/hawkersg/hawker-backend/internal/core"
)

// Type names what a favourite or review points at.
type Type string

const (
	Business Type = "business"
	Hawker   Type = "hawker"
)

// Ref is an opaque reference to a business (by user id) or a hawker
// centre (by id). Referenced rows are not required to exist.
type Ref struct {
	Type Type
	ID   string
}

func Parse(typ, id string) (Ref, error) {
	t := Type(strings.ToLower(strings.TrimSpace(typ)))
	if t != Business && t != Hawker {
		return Ref{}, fmt.Errorf("target type %q: %w", typ, core.ErrInvalidInput)
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Ref{}, fmt.Errorf("target id is required: %w", core.ErrInvalidInput)
	}

	return Ref{Type: t, ID: id}, nil
}

func (r Ref) String() string {
	return string(r.Type) + ":" + r.ID
}
