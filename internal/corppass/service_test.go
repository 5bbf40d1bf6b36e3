// AngelaMos | 2026
// service_test.go

package corppass

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
)

type memStates struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newMemStates() *memStates {
	return &memStates{sessions: map[string]Session{}}
}

func (m *memStates) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.State]; ok {
		return core.ErrDuplicateKey
	}
	m.sessions[s.State] = *s
	return nil
}

func (m *memStates) Attach(_ context.Context, state string, hint BusinessHint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[state]
	if !ok {
		return ErrInvalidState
	}
	s.Hint = &hint
	m.sessions[state] = s
	return nil
}

func (m *memStates) Take(_ context.Context, state string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[state]
	if !ok {
		return nil, ErrInvalidState
	}
	delete(m.sessions, state)
	return &s, nil
}

func testConfig(mock bool) config.CorpPassConfig {
	return config.CorpPassConfig{
		MockMode:    mock,
		Issuer:      "https://id.corppass.gov.sg/",
		ClientID:    "cd64b5b038275e5b447bf7323ef40a9d",
		RedirectURI: "http://localhost:8080/v1/auth/corppass/callback",
		FrontendURL: "http://localhost:5173",
		Scopes:      []string{"openid", "authinfo"},
		StateTTL:    10 * time.Minute,
	}
}

func queryOf(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestMockFlowConsumesStateOnce(t *testing.T) {
	ctx := context.Background()
	states := newMemStates()
	svc := NewService(testConfig(true), states, nil)

	authURL, err := svc.Authorize(ctx)
	require.NoError(t, err)
	assert.Contains(t, authURL, "http://localhost:5173/mock-corppass?")
	state := queryOf(t, authURL).Get("state")
	require.NotEmpty(t, state)

	callbackURL, err := svc.MockLogin(ctx, state, BusinessHint{UEN: "53312345K", EntityName: "Ah Seng Pte Ltd"})
	require.NoError(t, err)
	q := queryOf(t, callbackURL)
	assert.Equal(t, state, q.Get("state"))
	assert.Contains(t, q.Get("code"), "mock_code_")

	hint, err := svc.Callback(ctx, q.Get("code"), state)
	require.NoError(t, err)
	assert.Equal(t, "53312345K", hint.UEN)
	assert.Equal(t, "53312345K", hint.LicenseNumber)
	assert.Equal(t, "business@demo-hawker.com", hint.ContactEmail)

	_, err = svc.Callback(ctx, q.Get("code"), state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMockLoginWithoutStateOpensSession(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testConfig(true), newMemStates(), nil)

	callbackURL, err := svc.MockLogin(ctx, "", BusinessHint{})
	require.NoError(t, err)

	q := queryOf(t, callbackURL)
	hint, err := svc.Callback(ctx, q.Get("code"), q.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, defaultHint.UEN, hint.UEN)
	assert.Equal(t, defaultHint.EntityName, hint.EntityName)
}

func TestProductionMode(t *testing.T) {
	ctx := context.Background()
	states := newMemStates()
	svc := NewService(testConfig(false), states, nil)

	authURL, err := svc.Authorize(ctx)
	require.NoError(t, err)
	assert.Contains(t, authURL, "https://id.corppass.gov.sg/mga/sps/oauth/oauth20/authorize?")

	q := queryOf(t, authURL)
	state := q.Get("state")
	require.Contains(t, states.sessions, state)

	sess := states.sessions[state]
	assert.Equal(t, core.PKCEChallenge(sess.CodeVerifier), q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, sess.Nonce, q.Get("nonce"))
	assert.Equal(t, "openid authinfo", q.Get("scope"))

	_, err = svc.MockLogin(ctx, state, BusinessHint{})
	assert.ErrorIs(t, err, ErrMockDisabled)

	_, err = svc.Callback(ctx, "real-code", state)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.NotContains(t, states.sessions, state)
}

func TestCallbackRequiresCodeAndState(t *testing.T) {
	svc := NewService(testConfig(true), newMemStates(), nil)

	_, err := svc.Callback(context.Background(), "", "abc")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Callback(context.Background(), "code", "never-issued")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSignupURL(t *testing.T) {
	svc := NewService(testConfig(true), newMemStates(), nil)

	raw, err := svc.SignupURL(&BusinessHint{UEN: "U1", EntityName: "E", ContactEmail: "c@x.sg", LicenseNumber: "U1"})
	require.NoError(t, err)
	assert.Contains(t, raw, "http://localhost:5173/signup?")

	var hint BusinessHint
	require.NoError(t, json.Unmarshal([]byte(queryOf(t, raw).Get("bizInfo")), &hint))
	assert.Equal(t, "U1", hint.LicenseNumber)
}

func TestStatusTruncatesClientID(t *testing.T) {
	st := NewService(testConfig(true), newMemStates(), nil).Status()
	assert.Equal(t, "mock", st.Mode)
	assert.Equal(t, "cd64b5b038...", st.ClientID)
	assert.Contains(t, st.Endpoints, "mock_login")
}
