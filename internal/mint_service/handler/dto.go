package handler

// CreateWalletRequest represents a request to create a new credit wallet
type CreateWalletRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Balance       int64  `json:"balance"`
	LockedBalance int64  `json:"locked_balance"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// AttributeDTO represents a single asset trait in API payloads
type AttributeDTO struct {
	TraitType string `json:"trait_type" binding:"required"`
	Value     string `json:"value" binding:"required"`
}

// CreateMintRequest represents a request to mint a new asset
type CreateMintRequest struct {
	UserID         string         `json:"user_id" binding:"required,uuid"`
	AssetDraftID   string         `json:"asset_draft_id" binding:"omitempty,uuid"`
	CollectionID   string         `json:"collection_id" binding:"omitempty,uuid"`
	Chain          string         `json:"chain" binding:"required"`
	PriceCredits   int64          `json:"price_credits" binding:"required,gt=0"`
	Concept        string         `json:"concept" binding:"required"`
	Theme          string         `json:"theme,omitempty"`
	Attributes     []AttributeDTO `json:"attributes,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

// ReceiptResponse represents a mint receipt in API responses
type ReceiptResponse struct {
	ReceiptID     string `json:"receipt_id"`
	UserID        string `json:"user_id"`
	MintRequestID string `json:"mint_request_id"`
	TokenID       string `json:"token_id"`
	TxHash        string `json:"tx_hash"`
	PriceCredits  int64  `json:"price_credits"`
	CreatedAt     string `json:"created_at"`
}

// MintRequestResponse represents a mint request's state in API responses
type MintRequestResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Chain        string `json:"chain"`
	PriceCredits int64  `json:"price_credits"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// LedgerEntryResponse represents a fund movement in API responses
type LedgerEntryResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Type           string `json:"type"`
	Amount         int64  `json:"amount"`
	Direction      string `json:"direction"`
	ReferenceID    string `json:"reference_id"`
	IdempotencyKey string `json:"idempotency_key"`
	CreatedAt      string `json:"created_at"`
}

// AssetResponse represents a minted asset in API responses
type AssetResponse struct {
	TokenID     string         `json:"token_id"`
	Chain       string         `json:"chain"`
	OwnerUserID string         `json:"owner_user_id"`
	MetadataURI string         `json:"metadata_uri"`
	ImageURI    string         `json:"image_uri"`
	Attributes  []AttributeDTO `json:"attributes,omitempty"`
	Status      string         `json:"status"`
	TxHash      string         `json:"tx_hash"`
	CreatedAt   string         `json:"created_at"`
}

// AuditEventResponse represents an audit trail event in API responses
type AuditEventResponse struct {
	ID            string `json:"id"`
	ActorID       string `json:"actor_id"`
	Action        string `json:"action"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	MintRequestID string `json:"mint_request_id"`
	ContentHash   string `json:"content_hash"`
	OccurredAt    string `json:"occurred_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
