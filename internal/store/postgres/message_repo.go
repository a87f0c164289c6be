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

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, m.FromUser.Username, m.ToUser.Username, m.Body, now).Scan(&m.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	m.SentAt = now
	m.ReadAt = nil
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON m.from_username = f.username
		JOIN users AS t ON m.to_username = t.username
		WHERE m.id = $1
	`
	m := &domain.Message{
		FromUser: &domain.UserSummary{},
		ToUser:   &domain.UserSummary{},
	}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Body,
		&m.SentAt,
		&readAt,
		&m.FromUser.Username,
		&m.FromUser.FirstName,
		&m.FromUser.LastName,
		&m.FromUser.Phone,
		&m.ToUser.Username,
		&m.ToUser.FirstName,
		&m.ToUser.LastName,
		&m.ToUser.Phone,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}
	return m, nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, id int64) (time.Time, error) {
	// Only the first call writes; read_at is never overwritten.
	var readAt time.Time
	err := r.db.QueryRowContext(ctx, `
		UPDATE messages SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1
		RETURNING read_at
	`, id).Scan(&readAt)
	if err == sql.ErrNoRows {
		return time.Time{}, domain.ErrMessageNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("mark read: %w", err)
	}
	return readAt, nil
}
