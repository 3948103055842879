package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/mint_service/middleware"
	"github.com/nft-minting-service/internal/mint_service/service"
	saga "github.com/nft-minting-service/internal/saga/service"
)

// IdempotencyKeyHeader carries the caller's retry-safe operation key
const IdempotencyKeyHeader = "Idempotency-Key"

// MintHandler handles HTTP requests for mint operations
type MintHandler struct {
	mintService service.MintService
	logger      *slog.Logger
}

// NewMintHandler creates a new mint handler
func NewMintHandler(logger *slog.Logger, mintService service.MintService) *MintHandler {
	return &MintHandler{
		mintService: mintService,
		logger:      logger,
	}
}

// Create runs a mint saga. Replays with the same idempotency key return the
// original receipt instead of charging again.
func (h *MintHandler) Create(c *gin.Context) {
	var req CreateMintRequest
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

	// Header takes precedence over the body field
	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	if idempotencyKey == "" {
		idempotencyKey = req.IdempotencyKey
	}
	if idempotencyKey == "" {
		h.logger.Error("Missing idempotency key", "user_id", req.UserID)
		RespondBadRequest(c, "Idempotency-Key header or idempotency_key field is required")
		return
	}

	assetDraftID := parseOptionalUUID(req.AssetDraftID)
	collectionID := parseOptionalUUID(req.CollectionID)

	attributes := make([]shared.Attribute, 0, len(req.Attributes))
	for _, attr := range req.Attributes {
		attributes = append(attributes, shared.Attribute{TraitType: attr.TraitType, Value: attr.Value})
	}

	cmd := &shared.MintCommand{
		MintID:         uuid.New(),
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		AssetDraftID:   assetDraftID,
		CollectionID:   collectionID,
		Chain:          req.Chain,
		PriceCredits:   req.PriceCredits,
		Meta:           shared.MintMeta{Concept: req.Concept, Theme: req.Theme},
		Attributes:     attributes,
		CorrelationID:  middleware.GetCorrelationID(c),
		Timestamp:      time.Now(),
	}

	receipt, err := h.mintService.SubmitMint(c.Request.Context(), cmd)
	if err != nil {
		h.respondMintError(c, cmd, err)
		return
	}

	RespondOK(c, mapReceiptToResponse(receipt))
}

// GetByID retrieves a mint request's recorded state, returns 404 if not found
func (h *MintHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid mint request ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid mint request ID")
		return
	}

	request, err := h.mintService.GetMintRequest(c.Request.Context(), id)
	if err != nil {
		var notFound minting.ErrRequestNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Mint request not found")
			return
		}
		h.logger.Error("Failed to get mint request", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapMintRequestToResponse(request))
}

// respondMintError maps saga outcomes to HTTP statuses
func (h *MintHandler) respondMintError(c *gin.Context, cmd *shared.MintCommand, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidPrice),
		errors.Is(err, shared.ErrMissingKey),
		errors.Is(err, shared.ErrMissingConcept):
		RespondBadRequest(c, err.Error())

	case errors.Is(err, saga.ErrMintInFlight):
		h.logger.Warn("Concurrent mint for the same idempotency key",
			"user_id", cmd.UserID, "idempotency_key", cmd.IdempotencyKey,
		)
		RespondConflict(c, "A mint with this idempotency key is already in flight, retry shortly")

	default:
		var aborted saga.ErrMintAborted
		if errors.As(err, &aborted) {
			switch aborted.Reason {
			case shared.FailureReasonInsufficientFunds:
				RespondPaymentRequired(c, "Insufficient credits for this mint")
			case shared.FailureReasonWalletNotFound:
				RespondNotFound(c, "Wallet not found")
			case shared.FailureReasonGenerationFailed:
				RespondBadGateway(c, "GENERATION_FAILED", "Artwork generation failed, no credits were charged")
			default:
				h.logger.Error("Mint aborted", "mint_id", aborted.MintID, "reason", aborted.Reason, "error", err)
				RespondInternalError(c)
			}
			return
		}

		h.logger.Error("Failed to execute mint", "mint_id", cmd.MintID, "error", err)
		RespondInternalError(c)
	}
}

func parseOptionalUUID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// mapReceiptToResponse maps a mint receipt to a response DTO
func mapReceiptToResponse(receipt *minting.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:     receipt.ID.String(),
		UserID:        receipt.UserID.String(),
		MintRequestID: receipt.MintRequestID.String(),
		TokenID:       receipt.TokenID,
		TxHash:        receipt.TxHash,
		PriceCredits:  receipt.PriceCredits,
		CreatedAt:     receipt.CreatedAt.Format(time.RFC3339),
	}
}

// mapMintRequestToResponse maps a mint request to a response DTO
func mapMintRequestToResponse(request *minting.Request) MintRequestResponse {
	return MintRequestResponse{
		ID:           request.ID.String(),
		UserID:       request.UserID.String(),
		Chain:        request.Chain,
		PriceCredits: request.PriceCredits,
		Status:       string(request.Status),
		ErrorMessage: request.ErrorMessage,
		CreatedAt:    request.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    request.UpdatedAt.Format(time.RFC3339),
	}
}
