package minting

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is the durable, user-facing proof of a completed mint saga. It is
// uniquely keyed by (UserID, IdempotencyKey), which makes it the idempotency
// anchor for the whole operation.
type Receipt struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	IdempotencyKey    string    `json:"idempotency_key"`
	MintRequestID     uuid.UUID `json:"mint_request_id"`
	LockLedgerEntryID uuid.UUID `json:"lock_ledger_entry_id"`
	TokenID           string    `json:"token_id"`
	TxHash            string    `json:"tx_hash"`
	PriceCredits      int64     `json:"price_credits"`
	CreatedAt         time.Time `json:"created_at"`
}
