// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// PlaceholderPasswordHash marks accounts that cannot log in until claimed.
const PlaceholderPasswordHash = "placeholder"

var errMalformedHash = errors.New("malformed password hash")

// argonParams are the cost settings for new hashes. Stored hashes carry
// their own and are rehashed on login when these change.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{memory: 64 * 1024, time: 1, threads: 4, keyLen: 32}

const saltLength = 16

// passwordHash is the PHC string form:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type passwordHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.memory, h.params.time, h.params.threads,
		enc.EncodeToString(h.salt), enc.EncodeToString(h.key))
}

func parseHash(s string) (passwordHash, error) {
	var h passwordHash

	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return h, errMalformedHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return h, fmt.Errorf("argon2 version %q: %w", parts[2], errMalformedHash)
	}

	for _, kv := range strings.Split(parts[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return h, errMalformedHash
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return h, fmt.Errorf("argon2 %s: %w", name, errMalformedHash)
		}
		switch name {
		case "m":
			h.params.memory = uint32(n)
		case "t":
			h.params.time = uint32(n)
		case "p":
			if n == 0 || n > 255 {
				return h, errMalformedHash
			}
			h.params.threads = uint8(n)
		default:
			return h, errMalformedHash
		}
	}

	if h.params.memory == 0 || h.params.time == 0 || h.params.threads == 0 {
		return h, fmt.Errorf("argon2 params: %w", errMalformedHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("salt: %w", errMalformedHash)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return h, fmt.Errorf("key: %w", errMalformedHash)
	}
	h.params.keyLen = uint32(len(h.key)) //nolint:gosec // argon2 keys are tiny
	return h, nil
}

func derive(password string, salt []byte, p argonParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return passwordHash{
		params: currentParams,
		salt:   salt,
		key:    derive(password, salt, currentParams),
	}.String(), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(h.key, derive(password, h.salt, h.params)) == 1, nil
}

// IsUsableHash reports whether a stored hash can ever match a password.
// Seeded placeholder accounts cannot.
func IsUsableHash(encoded string) bool {
	if encoded == PlaceholderPasswordHash {
		return false
	}
	_, err := parseHash(encoded)
	return err == nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("timing-equaliser")
	if err != nil {
		return ""
	}
	return h
})

// VerifyPasswordTimingSafe always runs one argon2 derivation, so a missing
// account or an unusable stored hash costs the same as a wrong password.
// On success it also returns a fresh hash when the stored one was made
// with outdated parameters; empty means keep the stored hash.
func VerifyPasswordTimingSafe(password string, encoded *string) (bool, string, error) {
	if encoded == nil || !IsUsableHash(*encoded) {
		//nolint:errcheck // result is discarded; only the cost matters
		_, _ = VerifyPassword(password, dummyHash())
		return false, "", nil
	}

	h, err := parseHash(*encoded)
	if err != nil {
		return false, "", err
	}
	if subtle.ConstantTimeCompare(h.key, derive(password, h.salt, h.params)) != 1 {
		return false, "", nil
	}
	if h.params == currentParams {
		return true, "", nil
	}

	fresh, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; the rehash is retried next login
		return true, "", nil
	}
	return true, fresh, nil
}

// GenerateSecureToken returns n random bytes, URL-safe base64 encoded.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// PKCEChallenge derives the S256 code challenge for a verifier.
func PKCEChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// HashToken is the at-rest form of refresh tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
