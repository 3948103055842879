package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/mint_service/service"
)

// AssetHandler handles HTTP requests for minted asset reads
type AssetHandler struct {
	assetService service.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(logger *slog.Logger, assetService service.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// GetByTokenID retrieves a minted asset's metadata, returning 404 if not found
func (h *AssetHandler) GetByTokenID(c *gin.Context) {
	tokenID := c.Param("tokenId")
	if tokenID == "" {
		RespondBadRequest(c, "Token ID is required")
		return
	}

	a, err := h.assetService.GetAssetByTokenID(c.Request.Context(), tokenID)
	if err != nil {
		var notFound asset.ErrAssetNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Asset not found")
			return
		}
		h.logger.Error("Failed to get asset", "token_id", tokenID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAssetToResponse(a))
}

// GetImage serves the raw generated image bytes for a token
func (h *AssetHandler) GetImage(c *gin.Context) {
	tokenID := c.Param("tokenId")
	if tokenID == "" {
		RespondBadRequest(c, "Token ID is required")
		return
	}

	image, err := h.assetService.GetAssetImage(c.Request.Context(), tokenID)
	if err != nil {
		var notFound asset.ErrAssetNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Asset not found")
			return
		}
		h.logger.Error("Failed to get asset image", "token_id", tokenID, "error", err)
		RespondInternalError(c)
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}

// mapAssetToResponse maps an asset entity to a response DTO
func mapAssetToResponse(a *asset.Asset) AssetResponse {
	attributes := make([]AttributeDTO, 0, len(a.Attributes))
	for _, attr := range a.Attributes {
		attributes = append(attributes, AttributeDTO{TraitType: attr.TraitType, Value: attr.Value})
	}

	return AssetResponse{
		TokenID:     a.TokenID,
		Chain:       a.Chain,
		OwnerUserID: a.OwnerUserID.String(),
		MetadataURI: a.MetadataURI,
		ImageURI:    a.ImageURI,
		Attributes:  attributes,
		Status:      string(a.Status),
		TxHash:      a.TxHash,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}
