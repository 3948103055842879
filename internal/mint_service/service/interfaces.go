package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/audit"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/domain/wallet"
)

// WalletService defines the interface for credit wallet operations
type WalletService interface {
	// CreateWallet creates a wallet for a user with an initial credit grant
	// Returns ErrDuplicateWallet if the user already has one
	CreateWallet(ctx context.Context, userID uuid.UUID, initialBalance int64) (*wallet.Wallet, error)

	// GetWalletByUserID retrieves a user's wallet
	// Returns ErrWalletNotFound if the wallet doesn't exist
	GetWalletByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)

	// GetLedgerByUserID retrieves paginated fund movements for a user
	// Returns entries, total count of all entries, and any error
	GetLedgerByUserID(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)
}

// MintService defines the interface for mint operations
type MintService interface {
	// SubmitMint runs the mint saga for the given command. Replays of an
	// already-completed operation return the original receipt.
	SubmitMint(ctx context.Context, cmd *shared.MintCommand) (*minting.Receipt, error)

	// GetMintRequest retrieves a mint request's recorded state by its ID
	// Returns ErrRequestNotFound if no attempt was recorded under that ID
	GetMintRequest(ctx context.Context, id uuid.UUID) (*minting.Request, error)
}

// AssetService defines the interface for minted asset reads
type AssetService interface {
	// GetAssetByTokenID retrieves a minted asset's metadata
	GetAssetByTokenID(ctx context.Context, tokenID string) (*asset.Asset, error)

	// GetAssetImage retrieves the raw generated image bytes for a token
	GetAssetImage(ctx context.Context, tokenID string) ([]byte, error)
}

// AuditService defines the interface for audit trail reads
type AuditService interface {
	// GetEventsByActorID retrieves paginated audit events for a user
	// Returns events, total count, and any error
	GetEventsByActorID(ctx context.Context, actorID uuid.UUID, page, perPage int) ([]*audit.Event, int64, error)
}
