package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateUser when the username
	// is already taken.
	Create(ctx context.Context, u *User) error
	// GetByUsername returns the full user row, including the stored password
	// hash. Returns ErrUserNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// UpdateLoginTimestamp sets last_login_at to the current time and returns
	// the new value. Returns ErrUserNotFound when absent.
	UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error)
	// List returns summaries of all users ordered by username.
	List(ctx context.Context) ([]*UserSummary, error)
	// MessagesFrom returns the messages sent by the user, each carrying the
	// recipient's summary. Returns ErrUserNotFound when the user is absent.
	MessagesFrom(ctx context.Context, username string) ([]*UserMessage, error)
	// MessagesTo returns the messages received by the user, each carrying the
	// sender's summary. Returns ErrUserNotFound when the user is absent.
	MessagesTo(ctx context.Context, username string) ([]*UserMessage, error)
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	// Create inserts a new message, filling ID and SentAt. Returns
	// ErrUserNotFound when sender or recipient does not exist.
	Create(ctx context.Context, m *Message) error
	// GetByID returns the message with both party summaries embedded.
	// Returns ErrMessageNotFound when absent.
	GetByID(ctx context.Context, id int64) (*Message, error)
	// MarkRead sets read_at if it is still null and returns the effective
	// read timestamp; a second call returns the original one unchanged.
	// Returns ErrMessageNotFound when absent.
	MarkRead(ctx context.Context, id int64) (time.Time, error)
}
