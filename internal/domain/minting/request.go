package minting

import (
	"time"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/shared"
)

// Request is one row per saga attempt. Created with status PROCESSING at saga
// start; the terminal status lands either inside the committed transaction
// (COMPLETED) or through a best-effort write after rollback (FAILED).
type Request struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"user_id"`
	IdempotencyKey string               `json:"idempotency_key"`
	AssetDraftID   uuid.UUID            `json:"asset_draft_id"`
	CollectionID   uuid.UUID            `json:"collection_id"`
	Chain          string               `json:"chain"`
	PriceCredits   int64                `json:"price_credits"`
	Meta           shared.MintMeta      `json:"meta"`
	Attributes     []shared.Attribute   `json:"attributes,omitempty"`
	Status         shared.RequestStatus `json:"status"`
	ErrorMessage   string               `json:"error_message,omitempty"`
	CorrelationID  string               `json:"correlation_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewRequest builds a PROCESSING request from a mint command
func NewRequest(cmd *shared.MintCommand) *Request {
	now := time.Now()
	return &Request{
		ID:             cmd.MintID,
		UserID:         cmd.UserID,
		IdempotencyKey: cmd.IdempotencyKey,
		AssetDraftID:   cmd.AssetDraftID,
		CollectionID:   cmd.CollectionID,
		Chain:          cmd.Chain,
		PriceCredits:   cmd.PriceCredits,
		Meta:           cmd.Meta,
		Attributes:     cmd.Attributes,
		Status:         shared.RequestStatusProcessing,
		CorrelationID:  cmd.CorrelationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
