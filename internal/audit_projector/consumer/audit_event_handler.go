package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nft-minting-service/internal/domain/audit"
	"github.com/nft-minting-service/internal/platform/messaging/producers"
)

// AuditEventHandler handles incoming audit event messages from Kafka
type AuditEventHandler struct {
	auditRepo audit.Repository
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

// NewAuditEventHandler creates a new handler
func NewAuditEventHandler(
	logger *slog.Logger,
	auditRepo audit.Repository,
	producer producers.DeadLetterPublisher,
) *AuditEventHandler {
	return &AuditEventHandler{
		auditRepo: auditRepo,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage projects Kafka audit messages into the queryable trail
func (h *AuditEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event audit.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal audit event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received audit event for projection",
		"event_id", event.ID.String(),
		"actor_id", event.ActorID.String(),
		"action", event.Action,
		"entity_id", event.EntityID,
	)

	if err := h.auditRepo.Create(ctx, &event); err != nil {
		logger.Error("Failed to project audit event",
			"event_id", event.ID.String(),
			"actor_id", event.ActorID.String(),
			"error", err,
		)
		return fmt.Errorf("projecting audit event %s failed: %w", event.ID.String(), err)
	}

	logger.Info("Successfully projected audit event", "event_id", event.ID.String())
	return nil // Success, commit offset
}
