package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidPrice   = errors.New("price must be positive")
	ErrMissingKey     = errors.New("idempotency key is required")
	ErrMissingConcept = errors.New("mint concept is required")
)

// Attribute is a single trait attached to a minted asset
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MintMeta carries the creative inputs handed to the generative provider
type MintMeta struct {
	Concept string `json:"concept"`
	Theme   string `json:"theme"`
}

// MintCommand is one mint saga invocation. MintID identifies the attempt;
// IdempotencyKey identifies the logical operation across retries.
type MintCommand struct {
	MintID         uuid.UUID   `json:"mint_id"`
	UserID         uuid.UUID   `json:"user_id"`
	IdempotencyKey string      `json:"idempotency_key"`
	AssetDraftID   uuid.UUID   `json:"asset_draft_id"`
	CollectionID   uuid.UUID   `json:"collection_id"`
	Chain          string      `json:"chain"`
	PriceCredits   int64       `json:"price_credits"`
	Meta           MintMeta    `json:"meta"`
	Attributes     []Attribute `json:"attributes,omitempty"`
	CorrelationID  string      `json:"correlation_id,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// Validate checks the command's invariants before any side effect runs
func (c *MintCommand) Validate() error {
	if c.PriceCredits <= 0 {
		return ErrInvalidPrice
	}
	if c.IdempotencyKey == "" {
		return ErrMissingKey
	}
	if c.Meta.Concept == "" {
		return ErrMissingConcept
	}
	return nil
}
