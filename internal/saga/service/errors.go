package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/shared"
)

// ErrMintInFlight is returned when a concurrent saga holds the same
// (user, idempotency key) pair and has not issued a receipt yet. The caller
// should retry; the winner's receipt will be returned once it commits.
var ErrMintInFlight = errors.New("mint with this idempotency key is already in flight")

// ErrMintAborted wraps the cause of a rolled-back saga. All durable writes of
// the attempt were undone; Reason categorizes the failure for the caller.
type ErrMintAborted struct {
	MintID uuid.UUID
	Reason shared.FailureReason
	Err    error
}

func (e ErrMintAborted) Error() string {
	msg := "mint " + e.MintID.String() + " aborted: " + string(e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ErrMintAborted) Unwrap() error {
	return e.Err
}
