package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/wallet"
)

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	walletRepo wallet.Repository
	ledgerRepo ledger.Repository
}

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo wallet.Repository, ledgerRepo ledger.Repository) WalletService {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
	}
}

// CreateWallet creates a wallet with an initial credit grant. The unique
// constraint on user_id rejects a second wallet for the same user.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID, initialBalance int64) (*wallet.Wallet, error) {
	w, err := wallet.NewWallet(userID, initialBalance)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// GetWalletByUserID retrieves a wallet by user ID, returns ErrWalletNotFound if not found
func (s *WalletServiceImpl) GetWalletByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return s.walletRepo.GetByUserID(ctx, userID)
}

// GetLedgerByUserID retrieves paginated fund movements for a user
// Returns entries, total count, and any error
func (s *WalletServiceImpl) GetLedgerByUserID(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.ledgerRepo.GetByUserID(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
