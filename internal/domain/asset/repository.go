package asset

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages minted asset persistence
type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByTokenID(ctx context.Context, tokenID string) (*Asset, error)

	// GetImage returns the raw image bytes for a token without loading the
	// rest of the asset row
	GetImage(ctx context.Context, tokenID string) ([]byte, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAssetNotFound indicates missing asset on the read path
type ErrAssetNotFound struct {
	TokenID string
}

func (e ErrAssetNotFound) Error() string {
	return "asset not found: " + e.TokenID
}

// Is implements the errors.Is interface for ErrAssetNotFound
func (e ErrAssetNotFound) Is(target error) bool {
	t, ok := target.(ErrAssetNotFound)
	if !ok {
		return false
	}
	if t.TokenID == "" {
		return true
	}
	return e.TokenID == t.TokenID
}

// ErrDuplicateToken indicates token ID uniqueness violation
type ErrDuplicateToken struct {
	TokenID string
}

func (e ErrDuplicateToken) Error() string {
	return "duplicate token id: " + e.TokenID
}
