package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messagely/internal/domain"
	"messagely/internal/service"
)

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepo) MarkRead(ctx context.Context, id int64) (time.Time, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(time.Time), args.Error(1)
}

type recordingNotifier struct {
	toUsername string
	message    *domain.Message
	calls      int
}

func (n *recordingNotifier) NotifyNewMessage(toUsername string, m *domain.Message) {
	n.toUsername = toUsername
	n.message = m
	n.calls++
}

func TestSend(t *testing.T) {
	full := &domain.Message{
		ID:       7,
		FromUser: &domain.UserSummary{Username: "alice", FirstName: "Alice"},
		ToUser:   &domain.UserSummary{Username: "bob", FirstName: "Bob"},
		Body:     "hello",
		SentAt:   time.Now().UTC(),
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockMessageRepo)
		notifier := &recordingNotifier{}
		svc := service.NewMessageService(mockRepo, notifier)

		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
			return m.FromUser.Username == "alice" && m.ToUser.Username == "bob" && m.Body == "hello"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Message).ID = 7
		}).Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(7)).Return(full, nil)

		msg, err := svc.Send(context.Background(), "alice", "bob", "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(7), msg.ID)
		assert.Equal(t, "Bob", msg.ToUser.FirstName)
		assert.Nil(t, msg.ReadAt)

		assert.Equal(t, 1, notifier.calls)
		assert.Equal(t, "bob", notifier.toUsername)
		assert.Equal(t, full, notifier.message)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		mockRepo := new(MockMessageRepo)
		svc := service.NewMessageService(mockRepo, nil)

		_, err := svc.Send(context.Background(), "alice", "bob", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("UnknownRecipient", func(t *testing.T) {
		mockRepo := new(MockMessageRepo)
		notifier := &recordingNotifier{}
		svc := service.NewMessageService(mockRepo, notifier)

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserNotFound)

		_, err := svc.Send(context.Background(), "alice", "ghost", "hello")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.Zero(t, notifier.calls)
	})
}

func TestMarkRead(t *testing.T) {
	mockRepo := new(MockMessageRepo)
	svc := service.NewMessageService(mockRepo, nil)

	readAt := time.Now().UTC()
	mockRepo.On("MarkRead", mock.Anything, int64(7)).Return(readAt, nil)

	got, err := svc.MarkRead(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, readAt, got)
}
