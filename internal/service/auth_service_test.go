package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messagely/internal/domain"
	"messagely/internal/security"
	"messagely/internal/service"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context) ([]*domain.UserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserSummary), args.Error(1)
}

func (m *MockUserRepo) MessagesFrom(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserMessage), args.Error(1)
}

func (m *MockUserRepo) MessagesTo(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserMessage), args.Error(1)
}

func newAuthService(repo *MockUserRepo) (*service.AuthService, *security.TokenService) {
	tokenSvc := security.NewTokenService("test-secret", time.Hour)
	hasher := security.NewPasswordHasher(bcrypt.MinCost) // low cost for tests
	return service.NewAuthService(repo, tokenSvc, hasher), tokenSvc
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, tokenSvc := newAuthService(mockRepo)

		var stored *domain.User
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			stored = u
			return u.Username == "alice"
		})).Return(nil)

		resp, err := svc.Register(context.Background(), service.RegisterInput{
			Username:  "alice",
			Password:  "pw1",
			FirstName: "Alice",
			LastName:  "A",
			Phone:     "555",
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		// Plaintext never crosses the persistence boundary.
		require.NotNil(t, stored)
		assert.NotEqual(t, "pw1", stored.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("pw1")))

		username, err := tokenSvc.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("Duplicate", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateUser)

		resp, err := svc.Register(context.Background(), service.RegisterInput{
			Username: "existing",
			Password: "pw1",
		})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		_, err := svc.Register(context.Background(), service.RegisterInput{Username: "alice"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestAuthenticate(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hashed, err := hasher.Hash("correct")
	require.NoError(t, err)
	alice := &domain.User{Username: "alice", HashedPassword: hashed}

	t.Run("CorrectPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)

		ok, err := svc.Authenticate(context.Background(), "alice", "correct")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)

		ok, err := svc.Authenticate(context.Background(), "alice", "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		mockRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound)

		_, err := svc.Authenticate(context.Background(), "ghost", "anything")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestLogin(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hashed, err := hasher.Hash("pw1")
	require.NoError(t, err)
	alice := &domain.User{Username: "alice", HashedPassword: hashed}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, tokenSvc := newAuthService(mockRepo)

		touched := make(chan struct{})
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
		mockRepo.On("UpdateLoginTimestamp", mock.Anything, "alice").
			Run(func(args mock.Arguments) { close(touched) }).
			Return(time.Now(), nil)

		resp, err := svc.Login(context.Background(), "alice", "pw1")
		require.NoError(t, err)

		username, err := tokenSvc.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)

		// The last-login touch runs off the request path but must be attempted.
		select {
		case <-touched:
		case <-time.After(2 * time.Second):
			t.Fatal("UpdateLoginTimestamp was never called")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		mockRepo.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)

		resp, err := svc.Login(context.Background(), "alice", "wrong")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "UpdateLoginTimestamp")
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		mockRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound)

		resp, err := svc.Login(context.Background(), "ghost", "pw1")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
