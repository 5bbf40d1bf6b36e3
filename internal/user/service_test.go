// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateUsername(ctx context.Context, id, username string) error {
	return m.Called(ctx, id, username).Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func mustNew(t *testing.T, email, password string, kind Kind) *User {
	t.Helper()
	u, err := New(email, password, "hawker", kind)
	require.NoError(t, err)
	return u
}

func TestNew(t *testing.T) {
	u := mustNew(t, "  Owner@Example.COM ", "correct-horse", KindBusiness)

	assert.Equal(t, "owner@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.True(t, core.IsUsableHash(u.PasswordHash))

	_, err := New("a@b.c", "password123", "x", Kind("admin"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	owner := mustNew(t, "owner@example.com", "correct-horse", KindBusiness)

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByEmail", ctx, "owner@example.com").Return(owner, nil)

		got, err := NewService(repo, nil).Authenticate(ctx, "OWNER@example.com", "correct-horse", KindBusiness)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.ID)
		repo.AssertExpectations(t)
	})

	failures := []struct {
		name     string
		found    *User
		findErr  error
		password string
		kind     Kind
	}{
		{
			name:     "unknown email",
			findErr:  fmt.Errorf("get user by email: %w", core.ErrNotFound),
			password: "correct-horse",
			kind:     KindBusiness,
		},
		{
			name:     "wrong password",
			found:    owner,
			password: "wrong-horse",
			kind:     KindBusiness,
		},
		{
			name:     "wrong account kind",
			found:    owner,
			password: "correct-horse",
			kind:     KindConsumer,
		},
		{
			name: "seeded placeholder account",
			found: &User{
				ID:           "seeded",
				Email:        "sfa_placeholder_l001@example.com",
				PasswordHash: core.PlaceholderPasswordHash,
				Kind:         KindBusiness,
			},
			password: core.PlaceholderPasswordHash,
			kind:     KindBusiness,
		},
	}

	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tc.found != nil {
				repo.On("GetByEmail", ctx, mock.Anything).Return(tc.found, nil)
			} else {
				repo.On("GetByEmail", ctx, mock.Anything).Return(nil, tc.findErr)
			}

			got, err := NewService(repo, nil).Authenticate(ctx, "owner@example.com", tc.password, tc.kind)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	consumer := mustNew(t, "eater@example.com", "old-password", KindConsumer)

	t.Run("rejects wrong current password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, consumer.ID).Return(consumer, nil)

		err := NewService(repo, nil).ChangePassword(ctx, consumer.ID, "nope-nope", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("stores a new hash", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, consumer.ID).Return(consumer, nil)
		repo.On("UpdatePassword", ctx, consumer.ID, mock.MatchedBy(func(h string) bool {
			ok, err := core.VerifyPassword("new-password", h)
			return err == nil && ok
		})).Return(nil)

		err := NewService(repo, nil).ChangePassword(ctx, consumer.ID, "old-password", "new-password")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
