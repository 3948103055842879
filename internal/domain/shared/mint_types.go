package shared

// RequestStatus defines mint request processing states
type RequestStatus string

const (
	RequestStatusProcessing RequestStatus = "PROCESSING"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusFailed     RequestStatus = "FAILED"
)

// AssetStatus defines the lifecycle states of a minted asset
type AssetStatus string

const (
	AssetStatusDraft  AssetStatus = "DRAFT"
	AssetStatusMinted AssetStatus = "MINTED"
	AssetStatusBurned AssetStatus = "BURNED"
)

// FailureReason defines mint failure categories recorded on the request
type FailureReason string

const (
	FailureReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonGenerationFailed  FailureReason = "GENERATION_FAILED"
	FailureReasonWalletNotFound    FailureReason = "WALLET_NOT_FOUND"
	FailureReasonCommitFailed      FailureReason = "TRANSACTION_COMMIT_FAILED"
	FailureReasonUnknownError      FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines audit outbox publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
