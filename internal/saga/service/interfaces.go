package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
)

// MintingService defines the interface for executing mint sagas.
type MintingService interface {
	ExecuteMint(ctx context.Context, cmd *shared.MintCommand) (*minting.Receipt, error)
}

// TxBeginner opens the transaction a saga runs in. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FundManager handles wallet movements and their ledger records during a saga
type FundManager interface {
	// LockFunds reserves the mint price and records the LOCK ledger entry
	LockFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error)

	// SettleFunds finalizes the charge and records the SPEND ledger entry
	SettleFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error)
}

// RequestRecorder tracks the mint request row through the saga
type RequestRecorder interface {
	RecordRequest(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*minting.Request, error)
	MarkCompleted(ctx context.Context, tx pgx.Tx, request *minting.Request) error
}

// AssetMinter generates the artwork and persists the minted asset
type AssetMinter interface {
	MintAsset(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*asset.Asset, error)
}

// ReceiptIssuer creates the receipt and queues the audit event for publishing
type ReceiptIssuer interface {
	IssueReceipt(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand, lockEntry *ledger.Entry, minted *asset.Asset) (*minting.Receipt, error)
}

// FailureRecorder annotates failed mint attempts after the saga rolled back
type FailureRecorder interface {
	RecordFailure(ctx context.Context, cmd *shared.MintCommand, reason shared.FailureReason, errorMessage string) error
}
