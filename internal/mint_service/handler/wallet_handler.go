package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/ledger"
	"github.com/nft-minting-service/internal/domain/wallet"
	"github.com/nft-minting-service/internal/mint_service/service"
)

// WalletHandler handles HTTP requests for wallet operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// Create handles creation of a new credit wallet, rejecting a second wallet
// for the same user
func (h *WalletHandler) Create(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.logger.Error("Invalid user ID", "user_id", req.UserID, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	w, err := h.walletService.CreateWallet(c.Request.Context(), userID, req.InitialBalance)
	if err != nil {
		var duplicateErr wallet.ErrDuplicateWallet
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to create a second wallet", "user_id", duplicateErr.UserID)
			RespondConflict(c, "Wallet already exists for this user")
			return
		}
		if errors.Is(err, wallet.ErrInvalidAmount) {
			RespondBadRequest(c, "Initial balance must not be negative")
			return
		}
		h.logger.Error("Failed to create wallet", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapWalletToResponse(w))
}

// GetByUserID retrieves a user's wallet, returning 404 if not found
func (h *WalletHandler) GetByUserID(c *gin.Context) {
	userIDParam := c.Param("userId")
	userID, err := uuid.Parse(userIDParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "user_id", userIDParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	w, err := h.walletService.GetWalletByUserID(c.Request.Context(), userID)
	if err != nil {
		var notFound wallet.ErrWalletNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to get wallet", "user_id", userIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapWalletToResponse(w))
}

// GetLedger retrieves paginated fund movement history for a user
func (h *WalletHandler) GetLedger(c *gin.Context) {
	userIDParam := c.Param("userId")
	userID, err := uuid.Parse(userIDParam)
	if err != nil {
		h.logger.Error("Invalid user ID", "user_id", userIDParam, "error", err)
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.walletService.GetLedgerByUserID(
		c.Request.Context(),
		userID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get ledger entries", "user_id", userIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var movements []LedgerEntryResponse
	for _, entry := range entries {
		movements = append(movements, mapLedgerEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, movements, pagination.Page, pagination.PerPage, int(total))
}

// mapWalletToResponse maps a wallet entity to a wallet response DTO
func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:            w.ID.String(),
		UserID:        w.UserID.String(),
		Balance:       w.Balance,
		LockedBalance: w.LockedBalance,
		CreatedAt:     w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     w.UpdatedAt.Format(time.RFC3339),
	}
}

// mapLedgerEntryToResponse maps a ledger entry to a response DTO
func mapLedgerEntryToResponse(entry *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:             entry.ID.String(),
		UserID:         entry.UserID.String(),
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		Direction:      string(entry.Direction),
		ReferenceID:    entry.ReferenceID.String(),
		IdempotencyKey: entry.IdempotencyKey,
		CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
	}
}
