package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"messagely/internal/domain"
	"messagely/internal/security"
)

// AuthService handles registration and login.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
	}
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type TokenResponse struct {
	Token string
	User  *domain.User
}

// Register creates the user with a hashed password and returns a token for
// the new account. Plaintext never reaches the repository or the token claims.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       in.Username,
		HashedPassword: hashed,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.CreateForUser(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{Token: token, User: user}, nil
}

// Authenticate reports whether the password matches the stored hash. The hash
// is always resolved from the repository before comparison. Returns
// ErrUserNotFound when the username does not exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if err := s.hash.Verify(password, user.HashedPassword); err != nil {
		return false, nil
	}
	return true, nil
}

// Login verifies the credentials and issues a token. The last-login update
// runs after the token is produced and never fails the login itself.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.CreateForUser(username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	go s.touchLastLogin(username)

	return &TokenResponse{Token: token}, nil
}

// touchLastLogin is best effort; a transient failure is logged, not surfaced.
func (s *AuthService) touchLastLogin(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.users.UpdateLoginTimestamp(ctx, username); err != nil {
		log.Printf("update last_login_at for %q: %v", username, err)
	}
}
