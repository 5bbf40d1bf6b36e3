// AngelaMos | 2026
// validation_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "12.5", want: "12.50", ok: true},
		{in: " 0 ", want: "0.00", ok: true},
		{in: "99999999.99", want: "99999999.99", ok: true},
		{in: "100000000", ok: false},
		{in: "99999999.991", ok: false},
		{in: "-1", ok: false},
		{in: "1.234", ok: false},
		{in: "abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseMoney(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.StringFixed(2))
		})
	}
}

func TestMaxRunesIgnoresSurroundingSpace(t *testing.T) {
	v := NewValidator()
	type review struct {
		Description string `validate:"maxrunes=5"`
	}

	assert.NoError(t, v.Struct(review{Description: "   laksa   "}))
	assert.NoError(t, v.Struct(review{Description: "叻沙好吃!"}))
	assert.Error(t, v.Struct(review{Description: "laksa!"}))
	assert.Error(t, v.Struct(review{Description: strings.Repeat(" ", 3) + "laksa!"}))
}
