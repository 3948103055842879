package outbox_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/audit"
	"github.com/nft-minting-service/internal/domain/outbox"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

// MockMessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newOutboxMessage(t *testing.T) (*outbox.Message, *audit.Event) {
	t.Helper()
	event := audit.NewMintEvent(uuid.New(), uuid.New(), "eth-1a2b3c", "0xabc", 250, "corr-1")
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	msg.ID = 1
	msg.CreatedAt = time.Now()
	return msg, event
}

func TestAuditPublisher_PublishEvent(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("publishes event and marks outbox PROCESSED", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewAuditPublisher(mockOutboxRepo, mockProducer, logger)

		msg, event := newOutboxMessage(t)

		mockProducer.On("Publish", mock.Anything, event.ActorID.String(), mock.MatchedBy(func(v interface{}) bool {
			published, ok := v.(*audit.Event)
			return ok && published.ID == event.ID && published.ContentHash == event.ContentHash
		})).Return(nil).Once()
		mockOutboxRepo.On("UpdateStatus", mock.Anything, msg.ID, shared.OutboxStatusProcessed).Return(nil).Once()

		err := publisher.PublishEvent(ctx, msg)

		require.NoError(t, err)
		mockProducer.AssertExpectations(t)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("undecodable payload is marked FAILED_TO_PUBLISH without publishing", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewAuditPublisher(mockOutboxRepo, mockProducer, logger)

		msg := &outbox.Message{
			ID:        2,
			EventID:   uuid.New(),
			Payload:   []byte("not-json"),
			Status:    shared.OutboxStatusPending,
			CreatedAt: time.Now(),
		}

		mockOutboxRepo.On("UpdateStatus", mock.Anything, msg.ID, shared.OutboxStatusFailedToPublish).Return(nil).Once()

		err := publisher.PublishEvent(ctx, msg)

		require.Error(t, err)
		mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("publish failure leaves outbox row PENDING for retry", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewAuditPublisher(mockOutboxRepo, mockProducer, logger)

		msg, _ := newOutboxMessage(t)

		mockProducer.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		err := publisher.PublishEvent(ctx, msg)

		require.Error(t, err)
		mockOutboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status update failure after publish surfaces the error", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewAuditPublisher(mockOutboxRepo, mockProducer, logger)

		msg, _ := newOutboxMessage(t)

		mockProducer.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		mockOutboxRepo.On("UpdateStatus", mock.Anything, msg.ID, shared.OutboxStatusProcessed).Return(errors.New("db error")).Once()

		err := publisher.PublishEvent(ctx, msg)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "PROCESSED")
	})
}
