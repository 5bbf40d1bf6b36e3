// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/middleware"
)

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) LogoutAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func TestEmailAvailable(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, nil), nil)

	t.Run("rejects malformed addresses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.EmailAvailable(rec, httptest.NewRequest(http.MethodGet, "/users/email-available?email=nope", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reports taken addresses", func(t *testing.T) {
		repo.On("ExistsByEmail", mock.Anything, "stall@example.com").Return(true, nil).Once()

		rec := httptest.NewRecorder()
		h.EmailAvailable(rec, httptest.NewRequest(http.MethodGet,
			"/users/email-available?email=%20Stall@Example.com", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"available":false`)
		assert.Contains(t, rec.Body.String(), `"email":"stall@example.com"`)
	})
}

func TestChangePasswordHandler(t *testing.T) {
	owner := mustNew(t, "owner@example.com", "correct-horse", KindBusiness)

	call := func(h *Handler, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/users/me/password", strings.NewReader(body))
		req = req.WithContext(middleware.WithClaims(req.Context(),
			&middleware.AccessTokenClaims{UserID: owner.ID, UserType: "business"}))
		rec := httptest.NewRecorder()
		h.ChangePassword(rec, req)
		return rec
	}

	t.Run("wrong current password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
		revoker := new(mockRevoker)

		rec := call(NewHandler(NewService(repo, nil), revoker),
			`{"current_password":"wrong-horse","new_password":"battery-staple"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		revoker.AssertNotCalled(t, "LogoutAll", mock.Anything, mock.Anything)
	})

	t.Run("new password must differ", func(t *testing.T) {
		rec := call(NewHandler(NewService(new(MockRepository), nil), nil),
			`{"current_password":"correct-horse","new_password":"correct-horse"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success signs out everywhere", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
		repo.On("UpdatePassword", mock.Anything, owner.ID, mock.AnythingOfType("string")).Return(nil)
		revoker := new(mockRevoker)
		revoker.On("LogoutAll", mock.Anything, owner.ID).Return(nil)

		rec := call(NewHandler(NewService(repo, nil), revoker),
			`{"current_password":"correct-horse","new_password":"battery-staple"}`)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		revoker.AssertExpectations(t)
	})
}
