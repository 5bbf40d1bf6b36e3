// AngelaMos | 2026
// signer.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/middleware"
)

const (
	claimUserType = "user_type"
	claimLicense  = "license_number"
	claimKind     = "type"
	kindAccess    = "access"
)

// Signer issues and verifies ES256 access tokens. Business tokens carry
// the stall's license number so ownership checks need no lookup.
type Signer struct {
	key        jwk.Key
	verifyKey  jwk.Key
	jwks       jwk.Set
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	key, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verifyKey, err := key.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verifyKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	jwks := jwk.NewSet()
	if err := jwks.AddKey(verifyKey); err != nil {
		return nil, fmt.Errorf("add key to set: %w", err)
	}

	return &Signer{
		key:        key,
		verifyKey:  verifyKey,
		jwks:       jwks,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenExpire,
		refreshTTL: cfg.RefreshTokenExpire,
	}, nil
}

func loadSigningKey(path string) (jwk.Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, fmt.Errorf("set algorithm: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, uuid.NewString()[:8]); err != nil {
		return nil, fmt.Errorf("set key id: %w", err)
	}
	return key, nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	files := []struct {
		path string
		key  jwk.Key
		perm os.FileMode
	}{
		{privateKeyPath, private, 0o600},
		{publicKeyPath, public, 0o644},
	}
	for _, f := range files {
		pem, err := jwk.Pem(f.key)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, pem, f.perm); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}

func (s *Signer) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *Signer) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Issue signs an access token for identity and reports when it expires.
func (s *Signer) Issue(identity *Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	b := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		Subject(identity.UserID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(claimUserType, identity.UserType).
		Claim(claimKind, kindAccess)
	if identity.UserType == UserTypeBusiness {
		b = b.Claim(claimLicense, identity.LicenseNumber)
	}

	token, err := b.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), s.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return string(signed), expiresAt, nil
}

// VerifyAccessToken checks signature, issuer, audience and lifetime, then
// requires a known user type and, for businesses, a license number.
func (s *Signer) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), s.verifyKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if expired(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	invalid := func(reason string) error {
		return fmt.Errorf("verify token: %s: %w", reason, core.ErrTokenInvalid)
	}

	var kind string
	if err := token.Get(claimKind, &kind); err != nil || kind != kindAccess {
		return nil, invalid("not an access token")
	}

	sub, ok := token.Subject()
	if !ok || sub == "" {
		return nil, invalid("missing subject")
	}

	claims := &middleware.AccessTokenClaims{UserID: sub}

	if err := token.Get(claimUserType, &claims.UserType); err != nil {
		return nil, invalid("missing user type")
	}
	switch claims.UserType {
	case UserTypeConsumer:
	case UserTypeBusiness:
		if err := token.Get(claimLicense, &claims.LicenseNumber); err != nil ||
			claims.LicenseNumber == "" {
			return nil, invalid("business token without license number")
		}
	default:
		return nil, invalid("unknown user type")
	}

	claims.TokenID, _ = token.JwtID()
	claims.ExpiresAt, _ = token.Expiration()
	return claims, nil
}

func expired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}

// JWKSHandler publishes the verification key.
func (s *Signer) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if err := json.NewEncoder(w).Encode(s.jwks); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
		}
	}
}

func (s *Signer) KeyID() string {
	var kid string
	_ = s.key.Get(jwk.KeyIDKey, &kid) //nolint:errcheck // set in loadSigningKey
	return kid
}
