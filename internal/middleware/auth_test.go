// AngelaMos | 2026
// auth_test.go

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/middleware"
)

type stubVerifier map[string]*middleware.AccessTokenClaims

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	switch token {
	case "expired":
		return nil, core.ErrTokenExpired
	case "revoked":
		return nil, core.ErrTokenRevoked
	}
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

var verifier = stubVerifier{
	"consumer-a": {UserID: "a", UserType: "consumer"},
	"stall-1":    {UserID: "b", UserType: "business", LicenseNumber: "L001"},
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/consumers/{consumerID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(verifier))
		r.Use(middleware.RequireUserType("consumer"))
		r.Use(middleware.RequireSelf("consumerID"))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			core.OK(w, middleware.GetUserID(r.Context()))
		})
	})
	r.With(middleware.Authenticator(verifier)).Get("/license", func(w http.ResponseWriter, r *http.Request) {
		core.OK(w, middleware.GetLicenseNumber(r.Context()))
	})
	r.With(middleware.RequireUserType("business")).Get("/unguarded", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func do(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestConsumerGuards(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"own account", "/consumers/a", "consumer-a", http.StatusOK},
		{"other consumer", "/consumers/z", "consumer-a", http.StatusForbidden},
		{"business token", "/consumers/b", "stall-1", http.StatusForbidden},
		{"no token", "/consumers/a", "", http.StatusUnauthorized},
		{"expired token", "/consumers/a", "expired", http.StatusUnauthorized},
		{"revoked token", "/consumers/a", "revoked", http.StatusUnauthorized},
		{"garbage token", "/consumers/a", "garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(router, tt.path, tt.token).Code)
		})
	}
}

func TestLicenseOnContext(t *testing.T) {
	rec := do(newRouter(), "/license", "stall-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"L001"`)
}

func TestGuardWithoutAuthenticatorFailsClosed(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, do(newRouter(), "/unguarded", "stall-1").Code)
}

func TestChallengeHeader(t *testing.T) {
	rec := do(newRouter(), "/consumers/a", "expired")
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  abc ")
	assert.Equal(t, "abc", middleware.ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, middleware.ExtractToken(req))
}
