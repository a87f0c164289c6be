package service

import (
	"context"

	"messagely/internal/domain"
)

// UserService provides user-related read operations.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]*domain.UserSummary, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	return s.users.MessagesFrom(ctx, username)
}

func (s *UserService) MessagesTo(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	return s.users.MessagesTo(ctx, username)
}
