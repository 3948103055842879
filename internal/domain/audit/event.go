package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names the audited operation
type Action string

const (
	ActionAssetMinted Action = "ASSET_MINTED"
)

// EntityType names the kind of entity an event refers to
type EntityType string

const (
	EntityTypeNftAsset EntityType = "NFT_ASSET"
)

// Event is the immutable compliance record binding actor, action, entity and
// a content hash of the outcome. Written to the audit outbox inside the saga
// transaction and projected into MongoDB for querying.
type Event struct {
	ID            uuid.UUID  `json:"id" bson:"id"`
	ActorID       uuid.UUID  `json:"actor_id" bson:"actor_id"`
	Action        Action     `json:"action" bson:"action"`
	EntityType    EntityType `json:"entity_type" bson:"entity_type"`
	EntityID      string     `json:"entity_id" bson:"entity_id"`
	MintRequestID uuid.UUID  `json:"mint_request_id" bson:"mint_request_id"`
	ContentHash   string     `json:"content_hash" bson:"content_hash"`
	CorrelationID string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at" bson:"occurred_at"`
}

// NewMintEvent builds the audit event for a completed mint. The content hash
// covers the fields that identify the outcome, so the trail can detect
// after-the-fact tampering with receipt data.
func NewMintEvent(actorID uuid.UUID, mintRequestID uuid.UUID, tokenID, txHash string, priceCredits int64, correlationID string) *Event {
	return &Event{
		ID:            uuid.New(),
		ActorID:       actorID,
		Action:        ActionAssetMinted,
		EntityType:    EntityTypeNftAsset,
		EntityID:      tokenID,
		MintRequestID: mintRequestID,
		ContentHash:   contentHash(actorID, tokenID, txHash, priceCredits),
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}

func contentHash(actorID uuid.UUID, tokenID, txHash string, priceCredits int64) string {
	payload := fmt.Sprintf("%s|%s|%s|%d", actorID, tokenID, txHash, priceCredits)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
