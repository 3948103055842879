package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations of the dependencies

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, receipt *minting.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) GetByUserAndKey(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*minting.Receipt, error) {
	args := m.Called(ctx, userID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minting.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) WithTx(tx pgx.Tx) minting.ReceiptRepository {
	return m
}

type MockFundManager struct {
	mock.Mock
}

func (m *MockFundManager) LockFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error) {
	args := m.Called(ctx, tx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockFundManager) SettleFunds(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*ledger.Entry, error) {
	args := m.Called(ctx, tx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

type MockRequestRecorder struct {
	mock.Mock
}

func (m *MockRequestRecorder) RecordRequest(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*minting.Request, error) {
	args := m.Called(ctx, tx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minting.Request), args.Error(1)
}

func (m *MockRequestRecorder) MarkCompleted(ctx context.Context, tx pgx.Tx, request *minting.Request) error {
	args := m.Called(ctx, tx, request)
	return args.Error(0)
}

type MockAssetMinter struct {
	mock.Mock
}

func (m *MockAssetMinter) MintAsset(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*asset.Asset, error) {
	args := m.Called(ctx, tx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

type MockReceiptIssuer struct {
	mock.Mock
}

func (m *MockReceiptIssuer) IssueReceipt(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand, lockEntry *ledger.Entry, minted *asset.Asset) (*minting.Receipt, error) {
	args := m.Called(ctx, tx, cmd, lockEntry, minted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minting.Receipt), args.Error(1)
}

type MockFailureRecorder struct {
	mock.Mock
}

func (m *MockFailureRecorder) RecordFailure(ctx context.Context, cmd *shared.MintCommand, reason shared.FailureReason, errorMessage string) error {
	args := m.Called(ctx, cmd, reason, errorMessage)
	return args.Error(0)
}

// MockTx implements the pgx.Tx interface for testing
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return &pgconn.StatementDescription{}, nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *MockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *MockTx) Conn() *pgx.Conn {
	return nil
}

// MockTxBeginner hands out a MockTx for each saga
type MockTxBeginner struct {
	mock.Mock
}

func (m *MockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

type sagaMocks struct {
	db              *MockTxBeginner
	tx              *MockTx
	receiptRepo     *MockReceiptRepository
	fundManager     *MockFundManager
	requestRecorder *MockRequestRecorder
	assetMinter     *MockAssetMinter
	receiptIssuer   *MockReceiptIssuer
	failureRecorder *MockFailureRecorder
}

func newSagaService() (MintingService, *sagaMocks) {
	m := &sagaMocks{
		db:              &MockTxBeginner{},
		tx:              &MockTx{},
		receiptRepo:     &MockReceiptRepository{},
		fundManager:     &MockFundManager{},
		requestRecorder: &MockRequestRecorder{},
		assetMinter:     &MockAssetMinter{},
		receiptIssuer:   &MockReceiptIssuer{},
		failureRecorder: &MockFailureRecorder{},
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewMintingService(m.db, m.receiptRepo, m.fundManager, m.requestRecorder, m.assetMinter, m.receiptIssuer, m.failureRecorder, logger)
	return svc, m
}

func newMintCommand() *shared.MintCommand {
	return &shared.MintCommand{
		MintID:         uuid.New(),
		UserID:         uuid.New(),
		IdempotencyKey: "mint-key-1",
		AssetDraftID:   uuid.New(),
		CollectionID:   uuid.New(),
		Chain:          "ethereum",
		PriceCredits:   250,
		Meta:           shared.MintMeta{Concept: "a cosmic owl", Theme: "vaporwave"},
		CorrelationID:  "corr-1",
		Timestamp:      time.Now(),
	}
}

func TestExecuteMint_Success(t *testing.T) {
	svc, m := newSagaService()
	ctx := context.Background()
	cmd := newMintCommand()

	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	request := minting.NewRequest(cmd)
	minted := &asset.Asset{ID: uuid.New(), TokenID: "ethereum-abc", TxHash: "0x1"}
	receipt := &minting.Receipt{ID: uuid.New(), UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey, TokenID: minted.TokenID}

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).Return(request, nil)
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(minted, nil)
	m.fundManager.On("SettleFunds", mock.Anything, m.tx, cmd).Return(ledger.SpendEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID), nil)
	m.requestRecorder.On("MarkCompleted", mock.Anything, m.tx, request).Return(nil)
	m.receiptIssuer.On("IssueReceipt", mock.Anything, m.tx, cmd, lockEntry, minted).Return(receipt, nil)
	m.tx.On("Commit", mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, receipt, result)
	m.tx.AssertNotCalled(t, "Rollback", mock.Anything)
	m.failureRecorder.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.fundManager.AssertExpectations(t)
	m.receiptIssuer.AssertExpectations(t)
}

func TestExecuteMint_ReturnsExistingReceipt(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	existing := &minting.Receipt{ID: uuid.New(), UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey, TokenID: "ethereum-abc"}
	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(existing, nil)

	result, err := svc.ExecuteMint(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, existing, result)
	// No transaction, no charge, no generation
	m.db.AssertNotCalled(t, "Begin", mock.Anything)
	m.fundManager.AssertNotCalled(t, "LockFunds", mock.Anything, mock.Anything, mock.Anything)
	m.assetMinter.AssertNotCalled(t, "MintAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteMint_InsufficientFunds(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(nil, wallet.ErrInsufficientFunds)
	m.tx.On("Rollback", mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(context.Background(), cmd)

	assert.Nil(t, result)
	var aborted ErrMintAborted
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, cmd.MintID, aborted.MintID)
	assert.Equal(t, shared.FailureReasonInsufficientFunds, aborted.Reason)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
	m.tx.AssertCalled(t, "Rollback", mock.Anything)
	// An insufficient-funds rejection leaves zero rows: no annotation either
	m.failureRecorder.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.requestRecorder.AssertNotCalled(t, "RecordRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteMint_GenerationFailure(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	request := minting.NewRequest(cmd)

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).Return(request, nil)
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(nil, generation.ErrGenerationFailed)
	m.tx.On("Rollback", mock.Anything).Return(nil)
	m.failureRecorder.On("RecordFailure", mock.Anything, cmd, shared.FailureReasonGenerationFailed, mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(context.Background(), cmd)

	assert.Nil(t, result)
	var aborted ErrMintAborted
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, shared.FailureReasonGenerationFailed, aborted.Reason)
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	// Lock was rolled back with the transaction; failure annotated out of band
	m.tx.AssertCalled(t, "Rollback", mock.Anything)
	m.tx.AssertNotCalled(t, "Commit", mock.Anything)
	m.failureRecorder.AssertExpectations(t)
	m.fundManager.AssertNotCalled(t, "SettleFunds", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteMint_RetryAfterAbortedAttempt(t *testing.T) {
	// A retry with the same (user, idempotency key) after a failed attempt
	// must run the full saga again, not be mistaken for an in-flight
	// duplicate. The annotated FAILED row is taken over by the retry's
	// request write, so RecordRequest succeeds.
	svc, m := newSagaService()
	ctx := context.Background()
	cmd := newMintCommand()

	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	request := minting.NewRequest(cmd)
	minted := &asset.Asset{ID: uuid.New(), TokenID: "ethereum-abc", TxHash: "0x1"}
	receipt := &minting.Receipt{ID: uuid.New(), UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey, TokenID: minted.TokenID}

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).Return(request, nil)

	// First attempt aborts on generation and annotates the failure
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(nil, generation.ErrGenerationFailed).Once()
	m.tx.On("Rollback", mock.Anything).Return(nil)
	m.failureRecorder.On("RecordFailure", mock.Anything, cmd, shared.FailureReasonGenerationFailed, mock.Anything).Return(nil)

	_, err := svc.ExecuteMint(ctx, cmd)
	require.ErrorIs(t, err, generation.ErrGenerationFailed)

	// Retry re-enters and completes
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(minted, nil).Once()
	m.fundManager.On("SettleFunds", mock.Anything, m.tx, cmd).Return(ledger.SpendEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID), nil)
	m.requestRecorder.On("MarkCompleted", mock.Anything, m.tx, request).Return(nil)
	m.receiptIssuer.On("IssueReceipt", mock.Anything, m.tx, cmd, lockEntry, minted).Return(receipt, nil)
	m.tx.On("Commit", mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(ctx, cmd)

	require.NoError(t, err)
	require.NotErrorIs(t, err, ErrMintInFlight)
	assert.Equal(t, receipt, result)
	m.assetMinter.AssertNumberOfCalls(t, "MintAsset", 2)
	m.requestRecorder.AssertNumberOfCalls(t, "RecordRequest", 2)
}

func TestExecuteMint_DuplicateRace_WinnerCommitted(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	winner := &minting.Receipt{ID: uuid.New(), UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey, TokenID: "ethereum-abc"}
	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)

	// Fast path saw nothing; by the time the request row is inserted the
	// concurrent winner has taken the unique constraint
	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil).Once()
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).
		Return(nil, minting.ErrDuplicateRequest{UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey})
	m.tx.On("Rollback", mock.Anything).Return(nil)
	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(winner, nil).Once()

	result, err := svc.ExecuteMint(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, winner, result)
	m.tx.AssertCalled(t, "Rollback", mock.Anything)
	m.failureRecorder.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteMint_DuplicateRace_WinnerInFlight(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	request := minting.NewRequest(cmd)
	minted := &asset.Asset{ID: uuid.New(), TokenID: "ethereum-abc", TxHash: "0x1"}

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).Return(request, nil)
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(minted, nil)
	m.fundManager.On("SettleFunds", mock.Anything, m.tx, cmd).Return(ledger.SpendEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID), nil)
	m.requestRecorder.On("MarkCompleted", mock.Anything, m.tx, request).Return(nil)
	m.receiptIssuer.On("IssueReceipt", mock.Anything, m.tx, cmd, lockEntry, minted).
		Return(nil, minting.ErrDuplicateReceipt{UserID: cmd.UserID, IdempotencyKey: cmd.IdempotencyKey})
	m.tx.On("Rollback", mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(context.Background(), cmd)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMintInFlight)
	m.tx.AssertCalled(t, "Rollback", mock.Anything)
}

func TestExecuteMint_CommitFailure(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()

	lockEntry := ledger.LockEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID)
	request := minting.NewRequest(cmd)
	minted := &asset.Asset{ID: uuid.New(), TokenID: "ethereum-abc", TxHash: "0x1"}
	receipt := &minting.Receipt{ID: uuid.New()}

	m.receiptRepo.On("GetByUserAndKey", mock.Anything, cmd.UserID, cmd.IdempotencyKey).Return(nil, nil)
	m.db.On("Begin", mock.Anything).Return(m.tx, nil)
	m.fundManager.On("LockFunds", mock.Anything, m.tx, cmd).Return(lockEntry, nil)
	m.requestRecorder.On("RecordRequest", mock.Anything, m.tx, cmd).Return(request, nil)
	m.assetMinter.On("MintAsset", mock.Anything, m.tx, cmd).Return(minted, nil)
	m.fundManager.On("SettleFunds", mock.Anything, m.tx, cmd).Return(ledger.SpendEntry(cmd.UserID, cmd.PriceCredits, cmd.MintID, cmd.IdempotencyKey, cmd.CorrelationID), nil)
	m.requestRecorder.On("MarkCompleted", mock.Anything, m.tx, request).Return(nil)
	m.receiptIssuer.On("IssueReceipt", mock.Anything, m.tx, cmd, lockEntry, minted).Return(receipt, nil)
	m.tx.On("Commit", mock.Anything).Return(errors.New("connection lost"))
	m.tx.On("Rollback", mock.Anything).Return(errors.New("tx is closed"))
	m.failureRecorder.On("RecordFailure", mock.Anything, cmd, shared.FailureReasonCommitFailed, mock.Anything).Return(nil)

	result, err := svc.ExecuteMint(context.Background(), cmd)

	assert.Nil(t, result)
	var aborted ErrMintAborted
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, shared.FailureReasonCommitFailed, aborted.Reason)
	m.failureRecorder.AssertExpectations(t)
}

func TestExecuteMint_InvalidCommand(t *testing.T) {
	svc, m := newSagaService()
	cmd := newMintCommand()
	cmd.PriceCredits = 0

	result, err := svc.ExecuteMint(context.Background(), cmd)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrInvalidPrice)
	m.db.AssertNotCalled(t, "Begin", mock.Anything)
}
