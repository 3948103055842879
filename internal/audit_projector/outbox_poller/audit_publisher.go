package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nft-minting-service/internal/domain/outbox"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/platform/messaging/producers"
)

// AuditPublisher publishes outbox messages to the audit event topic
type AuditPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// AuditPublisherImpl implements AuditPublisher
type AuditPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewAuditPublisher creates a new publisher
func NewAuditPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) AuditPublisher {
	return &AuditPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent pushes an outbox row onto the audit topic and marks it PROCESSED
func (p *AuditPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetAuditEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal audit event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		// A payload that cannot be decoded will never publish, no point retrying
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to audit topic", "outbox_id", message.ID, "event_id", event.ID)

	// Keyed by actor so one user's trail stays ordered within a partition
	if err := p.producer.Publish(ctx, event.ActorID.String(), event); err != nil {
		logger.Error("Failed to publish audit event to Kafka", "outbox_id", message.ID, "event_id", event.ID, "error", err)
		return fmt.Errorf("failed to publish audit event %s: %w", event.ID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", event.ID, "error", err,
		)
		return fmt.Errorf("publish of event %s OK, but failed to mark outbox %d as PROCESSED: %w", event.ID, message.ID, err)
	}

	logger.Info("Outbox message successfully published and marked as PROCESSED", "outbox_id", message.ID, "event_id", event.ID)
	return nil
}
