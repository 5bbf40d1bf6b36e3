// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := HashPassword("kopi-peng")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := VerifyPassword("kopi-peng", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("teh-tarik", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	parsed, err := parseHash(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, parsed.String())
}

func TestIsUsableHash(t *testing.T) {
	good, err := HashPassword("x")
	require.NoError(t, err)

	assert.True(t, IsUsableHash(good))
	assert.False(t, IsUsableHash(PlaceholderPasswordHash))
	assert.False(t, IsUsableHash(""))
	assert.False(t, IsUsableHash("$argon2id$v=19$m=1,t=1$c2FsdA$a2V5"))
	assert.False(t, IsUsableHash("$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5"))
	assert.False(t, IsUsableHash("$argon2id$v=16$m=1,t=1,p=1$c2FsdA$a2V5"))
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	stored, err := HashPassword("chicken-rice")
	require.NoError(t, err)

	t.Run("match with current params needs no rehash", func(t *testing.T) {
		ok, fresh, err := VerifyPasswordTimingSafe("chicken-rice", &stored)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, fresh)
	})

	t.Run("missing and placeholder never match", func(t *testing.T) {
		ok, _, err := VerifyPasswordTimingSafe("anything", nil)
		require.NoError(t, err)
		assert.False(t, ok)

		placeholder := PlaceholderPasswordHash
		ok, _, err = VerifyPasswordTimingSafe(PlaceholderPasswordHash, &placeholder)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("outdated params are rehashed", func(t *testing.T) {
		weak := argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}
		salt := []byte("0123456789abcdef")
		old := passwordHash{params: weak, salt: salt, key: derive("laksa", salt, weak)}.String()

		ok, fresh, err := VerifyPasswordTimingSafe("laksa", &old)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NotEmpty(t, fresh)

		parsed, err := parseHash(fresh)
		require.NoError(t, err)
		assert.Equal(t, currentParams, parsed.params)
	})
}

func TestTokenHelpers(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 44)

	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))

	// RFC 7636 appendix B.
	assert.Equal(t,
		"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		PKCEChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}
