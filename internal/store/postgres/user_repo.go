package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"messagely/internal/domain"
)

// PostgreSQL error codes relevant to this schema.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.Username,
		u.HashedPassword,
		u.FirstName,
		u.LastName,
		u.Phone,
		now,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.JoinAt = now
	u.LastLoginAt = now
	return nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1
	`
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&u.Username,
		&u.HashedPassword,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.JoinAt,
		&u.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	var last time.Time
	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET last_login_at = NOW()
		WHERE username = $1
		RETURNING last_login_at
	`, username).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, domain.ErrUserNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("update login timestamp: %w", err)
	}
	return last, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.UserSummary, error) {
	query := `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.UserSummary
	for rows.Next() {
		u := &domain.UserSummary{}
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) MessagesFrom(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	if err := r.exists(ctx, username); err != nil {
		return nil, err
	}
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.to_username = u.username
		WHERE m.from_username = $1
		ORDER BY m.sent_at ASC, m.id ASC
	`
	return r.queryFeed(ctx, query, username, false)
}

func (r *UserRepo) MessagesTo(ctx context.Context, username string) ([]*domain.UserMessage, error) {
	if err := r.exists(ctx, username); err != nil {
		return nil, err
	}
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON m.from_username = u.username
		WHERE m.to_username = $1
		ORDER BY m.sent_at ASC, m.id ASC
	`
	return r.queryFeed(ctx, query, username, true)
}

func (r *UserRepo) queryFeed(ctx context.Context, query, username string, received bool) ([]*domain.UserMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.UserMessage
	for rows.Next() {
		m := &domain.UserMessage{}
		other := &domain.UserSummary{}
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&readAt,
			&other.Username,
			&other.FirstName,
			&other.LastName,
			&other.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		if received {
			m.FromUser = other
		} else {
			m.ToUser = other
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *UserRepo) exists(ctx context.Context, username string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = $1`, username).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	return nil
}
