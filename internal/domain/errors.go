package domain

import "errors"

// Sentinel errors for the application.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrDuplicateUser      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)
