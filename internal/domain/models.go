package domain

import "time"

// User represents an application user. The username is the primary key and
// is immutable once created.
type User struct {
	Username       string    `db:"username" json:"username"`
	HashedPassword string    `db:"password" json:"-"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Phone          string    `db:"phone" json:"phone"`
	JoinAt         time.Time `db:"join_at" json:"join_at"`
	LastLoginAt    time.Time `db:"last_login_at" json:"last_login_at"`
}

// UserSummary is the subset of user fields embedded in lists and message joins.
type UserSummary struct {
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`
}

// Summary projects a full user down to its list/join representation.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Message represents a single direct message. Sender and recipient are fixed
// at creation; ReadAt stays nil until the recipient marks the message read.
type Message struct {
	ID       int64        `json:"id"`
	FromUser *UserSummary `json:"from_user"`
	ToUser   *UserSummary `json:"to_user"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
}

// UserMessage is one entry of a per-user message feed. Exactly one of
// FromUser/ToUser is set: the sender on a received feed, the recipient on a
// sent feed.
type UserMessage struct {
	ID       int64        `json:"id"`
	FromUser *UserSummary `json:"from_user,omitempty"`
	ToUser   *UserSummary `json:"to_user,omitempty"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
}
