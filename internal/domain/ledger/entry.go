package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryType defines the kind of fund movement an entry records
type EntryType string

const (
	EntryTypeLock    EntryType = "LOCK"
	EntryTypeSpend   EntryType = "SPEND"
	EntryTypeReverse EntryType = "REVERSE"
)

// Direction defines whether a movement debits or credits the spendable balance
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Entry is the immutable record of a single fund movement. Entries are
// created inside the mint saga transaction and never updated or deleted.
// IdempotencyKey is unique per logical movement (saga key plus a movement
// tag) so the same movement can never be recorded twice.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           EntryType `json:"type"`
	Amount         int64     `json:"amount"`
	Direction      Direction `json:"direction"`
	ReferenceID    uuid.UUID `json:"reference_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LockEntry builds the LOCK entry for a mint saga. The derived idempotency
// key makes the movement unique per saga attempt.
func LockEntry(userID uuid.UUID, amount int64, referenceID uuid.UUID, sagaKey, correlationID string) *Entry {
	return &Entry{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           EntryTypeLock,
		Amount:         amount,
		Direction:      DirectionDebit,
		ReferenceID:    referenceID,
		IdempotencyKey: "lock-" + sagaKey,
		CorrelationID:  correlationID,
		CreatedAt:      time.Now(),
	}
}

// SpendEntry builds the SPEND entry finalizing a mint saga's charge
func SpendEntry(userID uuid.UUID, amount int64, referenceID uuid.UUID, sagaKey, correlationID string) *Entry {
	return &Entry{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           EntryTypeSpend,
		Amount:         amount,
		Direction:      DirectionDebit,
		ReferenceID:    referenceID,
		IdempotencyKey: "spend-" + sagaKey,
		CorrelationID:  correlationID,
		CreatedAt:      time.Now(),
	}
}
