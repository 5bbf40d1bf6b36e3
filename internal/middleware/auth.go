// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type claimsKey struct{}

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*AccessTokenClaims, error)
}

// AccessTokenClaims is what a verified bearer token says about the caller.
// LicenseNumber is set only for business accounts.
type AccessTokenClaims struct {
	UserID        string
	UserType      string
	LicenseNumber string
	TokenID       string
	ExpiresAt     time.Time
}

// Authenticator rejects requests without a valid bearer token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="hawker"`)
				core.JSONError(w, core.UnauthorizedError("missing authorization token"))
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="hawker", error="invalid_token"`)
				core.JSONError(w, tokenError(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func tokenError(err error) error {
	switch {
	case core.IsAppError(err):
		return err
	case errors.Is(err, core.ErrTokenExpired):
		return core.TokenExpiredError()
	case errors.Is(err, core.ErrTokenRevoked):
		return core.TokenRevokedError()
	default:
		return core.TokenInvalidError()
	}
}

// RequireUserType admits only tokens issued to one of the given account kinds.
func RequireUserType(types ...string) func(http.Handler) http.Handler {
	return guard(func(c *AccessTokenClaims, _ *http.Request) error {
		for _, t := range types {
			if c.UserType == t {
				return nil
			}
		}
		return core.ForbiddenError("this account type cannot perform this action")
	})
}

// RequireSelf rejects requests whose path parameter differs from the token subject.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return guard(func(c *AccessTokenClaims, r *http.Request) error {
		if chi.URLParam(r, param) != c.UserID {
			return core.ForbiddenError("you can only access your own account")
		}
		return nil
	})
}

// guard runs check against the claims placed by Authenticator. Mounting a
// guard without Authenticator in front of it fails closed.
func guard(check func(*AccessTokenClaims, *http.Request) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				core.JSONError(w, core.UnauthorizedError("authentication required"))
				return
			}
			if err := check(claims, r); err != nil {
				core.JSONError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken returns the bearer credential, or "" for any other scheme.
func ExtractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithClaims stores verified token claims on the context.
func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	c, _ := ctx.Value(claimsKey{}).(*AccessTokenClaims)
	return c
}

func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.UserID
	}
	return ""
}

func GetUserType(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.UserType
	}
	return ""
}

// GetLicenseNumber returns the license bound to a business token, or "".
func GetLicenseNumber(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.LicenseNumber
	}
	return ""
}
