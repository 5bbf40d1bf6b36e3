// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/middleware"
	"github.com/hawkersg/hawker-backend/internal/user"
)

var (
	ErrInvalidCredentials = user.ErrInvalidCredentials
	ErrTokenReuse         = errors.New("refresh token reuse detected")
	ErrUnknownUserType    = errors.New("unknown user type")
)

// IdentityProvider authenticates and resolves one account kind.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	Identity(ctx context.Context, userID string) (*Identity, error)
}

const refreshTokenBytes = 32

type Service struct {
	repo      Repository
	signer    *Signer
	providers map[string]IdentityProvider
	redis     redis.Cmdable
	now       func() time.Time
}

func NewService(repo Repository, signer *Signer, redisClient redis.Cmdable) *Service {
	return &Service{
		repo:      repo,
		signer:    signer,
		providers: make(map[string]IdentityProvider),
		redis:     redisClient,
		now:       time.Now,
	}
}

// RegisterProvider binds the authenticator for a user type.
func (s *Service) RegisterProvider(userType string, p IdentityProvider) {
	s.providers[userType] = p
}

func (s *Service) provider(userType string) (IdentityProvider, error) {
	p, ok := s.providers[userType]
	if !ok {
		return nil, fmt.Errorf("%q: %w", userType, ErrUnknownUserType)
	}
	return p, nil
}

// Client describes where a session was opened from.
type Client struct {
	UserAgent string
	IPAddress string
}

// Login checks credentials against the requested account kind. Every
// failure, including an unknown kind, is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest, client Client) (*AuthResponse, error) {
	p, err := s.provider(req.UserType)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	identity, err := p.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	sess, refresh, err := s.newSession(identity, "", client)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return s.respond(identity, refresh)
}

// Refresh exchanges a refresh token for a new pair. Presenting a token
// that was already exchanged revokes its whole family.
func (s *Service) Refresh(ctx context.Context, token string, client Client) (*AuthResponse, error) {
	current, err := s.repo.ByTokenHash(ctx, core.HashToken(token))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case current.Rotated():
		return nil, s.burnFamily(ctx, current.FamilyID)
	case current.Revoked():
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case current.Expired(s.now()):
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	p, err := s.provider(current.UserType)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	identity, err := p.Identity(ctx, current.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	next, refresh, err := s.newSession(identity, current.FamilyID, client)
	if err != nil {
		return nil, err
	}
	err = s.repo.Rotate(ctx, current.ID, next)
	if errors.Is(err, ErrRotationLost) {
		return nil, s.burnFamily(ctx, current.FamilyID)
	}
	if err != nil {
		return nil, err
	}
	return s.respond(identity, refresh)
}

func (s *Service) burnFamily(ctx context.Context, familyID string) error {
	//nolint:errcheck // the caller is rejected either way
	_, _ = s.repo.Revoke(ctx, RevokeFamily, familyID)
	return ErrTokenReuse
}

// Logout blacklists the calling access token until it expires and revokes
// the presented refresh token, if any.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken string,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}

	sess, err := s.repo.ByTokenHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if sess.UserID != claims.UserID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	_, err = s.repo.Revoke(ctx, RevokeSession, sess.ID)
	return err
}

// LogoutAll revokes every refresh session of the user.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	_, err := s.repo.Revoke(ctx, RevokeUser, userID)
	return err
}

func (s *Service) Sessions(ctx context.Context, userID string) ([]SessionView, error) {
	list, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionView, 0, len(list))
	for _, sess := range list {
		out = append(out, viewOf(&sess))
	}
	return out, nil
}

// RevokeSession ends one of the caller's own sessions.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	sess, err := s.repo.ByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	_, err = s.repo.Revoke(ctx, RevokeSession, sessionID)
	return err
}

// Me resolves the account behind an access token.
func (s *Service) Me(ctx context.Context, claims *middleware.AccessTokenClaims) (*Account, error) {
	p, err := s.provider(claims.UserType)
	if err != nil {
		return nil, fmt.Errorf("me: %w", core.ErrNotFound)
	}
	identity, err := p.Identity(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	acct := accountOf(identity)
	return &acct, nil
}

func blacklistKey(jti string) string {
	return core.RedisKey("auth", "blacklist", jti)
}

func (s *Service) blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if jti == "" || ttl <= 0 || s.redis == nil {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// VerifyAccessToken checks the signature and then the logout blacklist.
// A blacklist lookup failure is treated as not revoked.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.signer.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.TokenID == "" || s.redis == nil {
		return claims, nil
	}

	n, err := s.redis.Exists(ctx, blacklistKey(claims.TokenID)).Result()
	if err == nil && n > 0 {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	return claims, nil
}

// newSession mints a refresh token for identity. An empty family starts a
// new one.
func (s *Service) newSession(
	identity *Identity,
	familyID string,
	client Client,
) (*Session, string, error) {
	token, err := core.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}
	if familyID == "" {
		familyID = uuid.NewString()
	}

	return &Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		UserType:  identity.UserType,
		TokenHash: core.HashToken(token),
		FamilyID:  familyID,
		ExpiresAt: s.now().Add(s.signer.RefreshTTL()),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}, token, nil
}

func (s *Service) respond(identity *Identity, refresh string) (*AuthResponse, error) {
	access, expiresAt, err := s.signer.Issue(identity)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: accountOf(identity),
		Tokens: TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.signer.AccessTTL() / time.Second),
			ExpiresAt:    expiresAt,
		},
	}, nil
}
