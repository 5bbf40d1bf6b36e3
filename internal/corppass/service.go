// AngelaMos | 2026
// service.go

package corppass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
)

var (
	ErrProviderUnavailable = errors.New("corppass token exchange is not available")
	ErrMockDisabled        = fmt.Errorf("corppass mock login is disabled: %w", core.ErrForbidden)
)

const (
	authorizePath = "/mga/sps/oauth/oauth20/authorize"
	acrValues     = "urn:singpass:authentication:loa:2"
	mockCodeBytes = 16
	tokenBytes    = 32
)

// BusinessHint is what the identity provider tells us about the entity.
// It only pre-fills signup; accounts are created by business signup.
type BusinessHint struct {
	UEN           string `json:"uen"`
	EntityName    string `json:"entityName"`
	ContactEmail  string `json:"contactEmail"`
	LicenseNumber string `json:"licenseNumber"`
}

var defaultHint = BusinessHint{
	UEN:          "202400001A",
	EntityName:   "Demo Hawker Stall Pte Ltd",
	ContactEmail: "business@demo-hawker.com",
}

type Service struct {
	cfg    config.CorpPassConfig
	states StateStore
	logger *slog.Logger
}

func NewService(cfg config.CorpPassConfig, states StateStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		states: states,
		logger: logger.With("component", "corppass"),
	}
}

// Authorize opens a login session and returns where to send the user.
func (s *Service) Authorize(ctx context.Context) (string, error) {
	sess, err := newSession()
	if err != nil {
		return "", err
	}
	if err := s.states.Save(ctx, sess); err != nil {
		return "", err
	}

	if s.cfg.MockMode {
		return s.frontendURL("/mock-corppass", url.Values{"state": {sess.State}}), nil
	}

	q := url.Values{
		"client_id":             {s.cfg.ClientID},
		"response_type":         {"code"},
		"redirect_uri":          {s.cfg.RedirectURI},
		"scope":                 {strings.Join(s.cfg.Scopes, " ")},
		"state":                 {sess.State},
		"nonce":                 {sess.Nonce},
		"code_challenge":        {core.PKCEChallenge(sess.CodeVerifier)},
		"code_challenge_method": {"S256"},
		"acr_values":            {acrValues},
	}
	return strings.TrimRight(s.cfg.Issuer, "/") + authorizePath + "?" + q.Encode(), nil
}

// MockLogin stands in for the provider's login page. It attaches hint to
// the pending session, or opens a new one when state is empty or unknown,
// and returns the callback URL carrying a mock code.
func (s *Service) MockLogin(ctx context.Context, state string, hint BusinessHint) (string, error) {
	if !s.cfg.MockMode {
		return "", ErrMockDisabled
	}
	hint = withDefaults(hint)

	err := ErrInvalidState
	if state != "" {
		err = s.states.Attach(ctx, state, hint)
	}
	if errors.Is(err, ErrInvalidState) {
		sess, genErr := newSession()
		if genErr != nil {
			return "", genErr
		}
		sess.Hint = &hint
		if err := s.states.Save(ctx, sess); err != nil {
			return "", err
		}
		state = sess.State
	} else if err != nil {
		return "", err
	}

	code, err := core.GenerateSecureToken(mockCodeBytes)
	if err != nil {
		return "", err
	}

	q := url.Values{"code": {"mock_code_" + code}, "state": {state}}
	return s.cfg.RedirectURI + "?" + q.Encode(), nil
}

// Callback consumes state and returns the business hint for signup.
func (s *Service) Callback(ctx context.Context, code, state string) (*BusinessHint, error) {
	if code == "" || state == "" {
		return nil, fmt.Errorf("missing code or state: %w", core.ErrInvalidInput)
	}

	sess, err := s.states.Take(ctx, state)
	if err != nil {
		return nil, err
	}

	switch {
	case sess.Hint != nil:
		hint := withDefaults(*sess.Hint)
		s.logger.Info("corppass callback", "mode", s.mode(), "uen", hint.UEN)
		return &hint, nil
	case s.cfg.MockMode:
		hint := withDefaults(BusinessHint{})
		return &hint, nil
	default:
		return nil, ErrProviderUnavailable
	}
}

// SignupURL is the frontend page pre-filled with the hint.
func (s *Service) SignupURL(hint *BusinessHint) (string, error) {
	data, err := json.Marshal(hint)
	if err != nil {
		return "", fmt.Errorf("encode business hint: %w", err)
	}
	return s.frontendURL("/signup", url.Values{"bizInfo": {string(data)}}), nil
}

// FailureURL sends the user back to signup with a reason.
func (s *Service) FailureURL(reason string) string {
	return s.frontendURL("/signup", url.Values{"corppass": {"error"}, "message": {reason}})
}

type Status struct {
	Mode        string            `json:"mode"`
	MockMode    bool              `json:"mock_mode"`
	Configured  bool              `json:"configured"`
	ClientID    string            `json:"client_id,omitempty"`
	Issuer      string            `json:"issuer"`
	RedirectURI string            `json:"redirect_uri"`
	FrontendURL string            `json:"frontend_url"`
	Scopes      []string          `json:"scopes"`
	Endpoints   map[string]string `json:"endpoints"`
}

func (s *Service) Status() Status {
	clientID := s.cfg.ClientID
	if len(clientID) > 10 {
		clientID = clientID[:10] + "..."
	}

	endpoints := map[string]string{
		"authorize": "/v1/auth/corppass/authorize",
		"callback":  "/v1/auth/corppass/callback",
	}
	if s.cfg.MockMode {
		endpoints["mock_login"] = "/v1/auth/corppass/mock-login"
	}

	return Status{
		Mode:        s.mode(),
		MockMode:    s.cfg.MockMode,
		Configured:  s.cfg.ClientID != "",
		ClientID:    clientID,
		Issuer:      s.cfg.Issuer,
		RedirectURI: s.cfg.RedirectURI,
		FrontendURL: s.cfg.FrontendURL,
		Scopes:      s.cfg.Scopes,
		Endpoints:   endpoints,
	}
}

func (s *Service) mode() string {
	if s.cfg.MockMode {
		return "mock"
	}
	return "production"
}

func (s *Service) frontendURL(path string, q url.Values) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + path + "?" + q.Encode()
}

func newSession() (*Session, error) {
	state, err := core.GenerateSecureToken(tokenBytes)
	if err != nil {
		return nil, err
	}
	nonce, err := core.GenerateSecureToken(tokenBytes)
	if err != nil {
		return nil, err
	}
	verifier, err := core.GenerateSecureToken(tokenBytes)
	if err != nil {
		return nil, err
	}
	return &Session{
		State:        state,
		Nonce:        nonce,
		CodeVerifier: strings.TrimRight(verifier, "="),
	}, nil
}

// withDefaults fills blank fields from the demo entity. The UEN doubles
// as the license number.
func withDefaults(h BusinessHint) BusinessHint {
	if strings.TrimSpace(h.UEN) == "" {
		h.UEN = defaultHint.UEN
	}
	if strings.TrimSpace(h.EntityName) == "" {
		h.EntityName = defaultHint.EntityName
	}
	if strings.TrimSpace(h.ContactEmail) == "" {
		h.ContactEmail = defaultHint.ContactEmail
	}
	if h.LicenseNumber == "" {
		h.LicenseNumber = h.UEN
	}
	return h
}
