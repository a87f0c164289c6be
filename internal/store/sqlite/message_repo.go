package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

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
		VALUES (?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, m.FromUser.Username, m.ToUser.Username, m.Body, now)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
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
		WHERE m.id = ?
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
	now := time.Now().UTC()
	// Only the first call writes; read_at is never overwritten.
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`, now, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("mark read: %w", err)
	}

	var readAt sql.NullTime
	err = r.db.QueryRowContext(ctx, `SELECT read_at FROM messages WHERE id = ?`, id).Scan(&readAt)
	if err == sql.ErrNoRows {
		return time.Time{}, domain.ErrMessageNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read back read_at: %w", err)
	}
	if !readAt.Valid {
		return time.Time{}, fmt.Errorf("read_at not set after mark read")
	}
	return readAt.Time, nil
}
