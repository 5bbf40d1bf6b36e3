// AngelaMos | 2026
// target_test.go

package target_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/target"
)

func TestParse(t *testing.T) {
	ref, err := target.Parse(" Business ", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, target.Ref{Type: target.Business, ID: "42"}, ref)
	assert.Equal(t, "business:42", ref.String())

	_, err = target.Parse("stall", "42")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = target.Parse("hawker", "  ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
