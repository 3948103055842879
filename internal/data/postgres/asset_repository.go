package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/asset"
	"github.com/nft-minting-service/internal/platform/persistence"
)

// AssetRepository implements the asset.Repository interface for PostgreSQL
type AssetRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAssetRepository creates a new PostgreSQL asset repository
func NewAssetRepository(logger *slog.Logger, db *persistence.PostgresDB) asset.Repository {
	return &AssetRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *AssetRepository) WithTx(tx pgx.Tx) asset.Repository {
	return &AssetRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a minted asset with its raw image bytes. The unique
// constraint on token_id rejects a second mint of the same token.
func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	attributes, err := json.Marshal(a.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal asset attributes: %w", err)
	}

	query := `
		INSERT INTO nft_assets (id, token_id, chain, owner_user_id, mint_request_id, metadata_uri, image_uri, attributes, status, tx_hash, image_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.querier.Exec(ctx, query,
		a.ID,
		a.TokenID,
		a.Chain,
		a.OwnerUserID,
		a.MintRequestID,
		a.MetadataURI,
		a.ImageURI,
		attributes,
		a.Status,
		a.TxHash,
		a.ImageData,
		a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return asset.ErrDuplicateToken{TokenID: a.TokenID}
		}
		r.logger.Error("Failed to create asset", "token_id", a.TokenID, "error", err)
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByTokenID retrieves an asset by its token identifier.
// Returns ErrAssetNotFound if no asset exists for the token.
func (r *AssetRepository) GetByTokenID(ctx context.Context, tokenID string) (*asset.Asset, error) {
	query := `
		SELECT id, token_id, chain, owner_user_id, mint_request_id, metadata_uri, image_uri, attributes, status, tx_hash, image_data, created_at
		FROM nft_assets
		WHERE token_id = $1
	`

	var a asset.Asset
	var attributes []byte
	err := r.querier.QueryRow(ctx, query, tokenID).Scan(
		&a.ID,
		&a.TokenID,
		&a.Chain,
		&a.OwnerUserID,
		&a.MintRequestID,
		&a.MetadataURI,
		&a.ImageURI,
		&attributes,
		&a.Status,
		&a.TxHash,
		&a.ImageData,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrAssetNotFound{TokenID: tokenID}
		}
		r.logger.Error("Failed to get asset", "token_id", tokenID, "error", err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &a.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset attributes: %w", err)
		}
	}

	return &a, nil
}

// GetImage returns the raw image bytes for a token
func (r *AssetRepository) GetImage(ctx context.Context, tokenID string) ([]byte, error) {
	query := `
		SELECT image_data FROM nft_assets WHERE token_id = $1
	`

	var imageData []byte
	err := r.querier.QueryRow(ctx, query, tokenID).Scan(&imageData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrAssetNotFound{TokenID: tokenID}
		}
		r.logger.Error("Failed to get asset image", "token_id", tokenID, "error", err)
		return nil, fmt.Errorf("failed to get asset image: %w", err)
	}

	return imageData, nil
}
