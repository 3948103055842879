package service

import (
	"context"

	"github.com/nft-minting-service/internal/domain/asset"
)

// AssetServiceImpl implements the AssetService interface
type AssetServiceImpl struct {
	assetRepo asset.Repository
}

// NewAssetService creates a new asset service
func NewAssetService(assetRepo asset.Repository) AssetService {
	return &AssetServiceImpl{
		assetRepo: assetRepo,
	}
}

// GetAssetByTokenID retrieves a minted asset by its token ID
func (s *AssetServiceImpl) GetAssetByTokenID(ctx context.Context, tokenID string) (*asset.Asset, error) {
	return s.assetRepo.GetByTokenID(ctx, tokenID)
}

// GetAssetImage retrieves the raw generated image bytes for a token
func (s *AssetServiceImpl) GetAssetImage(ctx context.Context, tokenID string) ([]byte, error) {
	return s.assetRepo.GetImage(ctx, tokenID)
}
