package service

import (
	"context"
	"fmt"
	"time"

	"messagely/internal/domain"
)

// Notifier pushes events about new messages to connected clients.
type Notifier interface {
	NotifyNewMessage(toUsername string, m *domain.Message)
}

// MessageService handles sending, fetching, and marking messages read.
// Per-request authorization (who may see or mark a message) lives at the
// HTTP boundary.
type MessageService struct {
	messages domain.MessageRepository
	notifier Notifier
}

func NewMessageService(messages domain.MessageRepository, notifier Notifier) *MessageService {
	return &MessageService{
		messages: messages,
		notifier: notifier,
	}
}

// Send persists a new message from the sender to the recipient and returns
// it with both party summaries resolved. Connected recipients get a push
// notification, best effort.
func (s *MessageService) Send(ctx context.Context, fromUsername, toUsername, body string) (*domain.Message, error) {
	if fromUsername == "" || toUsername == "" || body == "" {
		return nil, domain.ErrInvalidInput
	}

	msg := &domain.Message{
		FromUser: &domain.UserSummary{Username: fromUsername},
		ToUser:   &domain.UserSummary{Username: toUsername},
		Body:     body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	full, err := s.messages.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("load created message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(toUsername, full)
	}
	return full, nil
}

func (s *MessageService) Get(ctx context.Context, id int64) (*domain.Message, error) {
	return s.messages.GetByID(ctx, id)
}

// MarkRead sets the message's read timestamp. Repeated calls return the
// timestamp set by the first one.
func (s *MessageService) MarkRead(ctx context.Context, id int64) (time.Time, error) {
	return s.messages.MarkRead(ctx, id)
}
