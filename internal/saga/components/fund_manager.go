package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/saga/service"
)

// FundManagerImpl implements the FundManager interface
type FundManagerImpl struct {
	walletRepo wallet.Repository
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

// NewFundManager creates a new FundManagerImpl
func NewFundManager(walletRepo wallet.Repository, ledgerRepo ledger.Repository, logger *slog.Logger) service.FundManager {
	return &FundManagerImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// LockFunds reserves the mint price on the user's wallet and records the LOCK
// ledger entry. The conditional update inside Lock serializes concurrent
// sagas against the same wallet.
func (m *FundManagerImpl) LockFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error) {
	logger := m.logger
	if cmd.CorrelationID != "" {
		logger = m.logger.With("correlation_id", cmd.CorrelationID)
	}

	walletRepoTx := m.walletRepo.WithTx(tx)

	lockedWallet, err := walletRepoTx.Lock(ctx, cmd.UserID, cmd.PriceCredits)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) || errors.Is(err, wallet.ErrWalletNotFound{UserID: cmd.UserID}) {
			logger.Warn("Fund lock rejected", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "amount", cmd.PriceCredits, "original_error", err)
			return nil, err
		}
		logger.Error("Failed to lock funds", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock funds for mint %s: %w", cmd.MintID.String(), err)
	}
	logger.Info("Funds locked", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "amount", cmd.PriceCredits, "balance", lockedWallet.Balance, "locked", lockedWallet.LockedBalance)

	entry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	if err := m.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		logger.Error("Failed to record lock ledger entry", "mint_id", cmd.MintID.String(), "error", err)
		return nil, err
	}

	return entry, nil
}

// SettleFunds finalizes the charge by draining the reservation and records
// the SPEND ledger entry
func (m *FundManagerImpl) SettleFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error) {
	logger := m.logger
	if cmd.CorrelationID != "" {
		logger = m.logger.With("correlation_id", cmd.CorrelationID)
	}

	settledWallet, err := m.walletRepo.WithTx(tx).Settle(ctx, cmd.UserID, cmd.PriceCredits)
	if err != nil {
		logger.Error("Failed to settle funds", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "error", err)
		return nil, fmt.Errorf("failed to settle funds for mint %s: %w", cmd.MintID.String(), err)
	}
	logger.Info("Funds settled", "mint_id", cmd.MintID.String(), "user_id", cmd.UserID.String(), "amount", cmd.PriceCredits, "balance", settledWallet.Balance, "locked", settledWallet.LockedBalance)

	entry := ledger.SpendEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	if err := m.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		logger.Error("Failed to record spend ledger entry", "mint_id", cmd.MintID.String(), "error", err)
		return nil, err
	}

	return entry, nil
}
