package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/generation"
	"github.com/nft-minting-service/internal/saga/service"
)

// AssetMinterImpl implements the AssetMinter interface
type AssetMinterImpl struct {
	generator generation.Generator
	assetRepo asset.Repository
	logger    *slog.Logger
}

// NewAssetMinter creates a new AssetMinterImpl
func NewAssetMinter(generator generation.Generator, assetRepo asset.Repository, logger *slog.Logger) service.AssetMinter {
	return &AssetMinterImpl{
		generator: generator,
		assetRepo: assetRepo,
		logger:    logger,
	}
}

// MintAsset generates the artwork and persists the minted asset inside the
// saga transaction. The generation call is the long pole of the saga; its
// deadline comes from the generator's own timeout and the request context.
func (m *AssetMinterImpl) MintAsset(ctx context.Context, tx pgx.Tx, cmd *shared.MintCommand) (*asset.Asset, error) {
	logger := m.logger
	if cmd.CorrelationID != "" {
		logger = m.logger.With("correlation_id", cmd.CorrelationID)
	}

	params := generation.StyleParams{
		Concept:    cmd.Meta.Concept,
		Theme:      cmd.Meta.Theme,
		Attributes: make(map[string]string, len(cmd.Attributes)),
	}
	for _, attr := range cmd.Attributes {
		params.Attributes[attr.TraitType] = attr.Value
	}

	image, err := m.generator.Generate(ctx, params)
	if err != nil {
		logger.Warn("Artwork generation failed", "mint_id", cmd.MintID.String(), "concept", cmd.Meta.Concept, "error", err)
		return nil, err
	}
	logger.Info("Artwork generated", "mint_id", cmd.MintID.String(), "image_bytes", len(image))

	now := time.Now()
	tokenID := asset.SynthesizeTokenID(cmd.MintID, cmd.Chain)
	minted := &asset.Asset{
		ID:            uuid.New(),
		TokenID:       tokenID,
		Chain:         cmd.Chain,
		OwnerUserID:   cmd.UserID,
		MintRequestID: cmd.MintID,
		MetadataURI:   fmt.Sprintf("nft://%s/%s", cmd.Chain, tokenID),
		ImageURI:      fmt.Sprintf("/api/v1/assets/%s/image", tokenID),
		Attributes:    cmd.Attributes,
		Status:        shared.AssetStatusMinted,
		TxHash:        asset.SynthesizeTxHash(tokenID, now),
		ImageData:     image,
		CreatedAt:     now,
	}

	if err := m.assetRepo.WithTx(tx).Create(ctx, minted); err != nil {
		logger.Error("Failed to persist minted asset", "mint_id", cmd.MintID.String(), "token_id", tokenID, "error", err)
		return nil, err
	}
	logger.Info("Asset persisted", "mint_id", cmd.MintID.String(), "token_id", tokenID, "tx_hash", minted.TxHash)

	return minted, nil
}
