package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nft-minting-service/internal/domain/minting"
	"github.com/nft-minting-service/internal/domain/shared"
	"github.com/nft-minting-service/internal/platform/persistence"
)

// MintRequestRepository implements the minting.RequestRepository interface
// for PostgreSQL
type MintRequestRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMintRequestRepository creates a new PostgreSQL mint request repository
func NewMintRequestRepository(logger *slog.Logger, db *persistence.PostgresDB) minting.RequestRepository {
	return &MintRequestRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *MintRequestRepository) WithTx(tx pgx.Tx) minting.RequestRepository {
	return &MintRequestRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new mint request in PROCESSING status. A leftover FAILED
// row from an earlier aborted attempt with the same (user_id, idempotency_key)
// pair is taken over, so a retry re-enters the saga instead of being rejected.
// A conflicting PROCESSING or COMPLETED row is a genuine duplicate: the upsert
// touches zero rows and ErrDuplicateRequest is returned.
func (r *MintRequestRepository) Create(ctx context.Context, req *minting.Request) error {
	attributes, err := json.Marshal(req.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal request attributes: %w", err)
	}

	query := `
		INSERT INTO mint_requests (id, user_id, idempotency_key, asset_draft_id, collection_id, chain, price_credits, concept, theme, attributes, status, error_message, correlation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id, idempotency_key)
		DO UPDATE SET id = EXCLUDED.id, asset_draft_id = EXCLUDED.asset_draft_id, collection_id = EXCLUDED.collection_id, chain = EXCLUDED.chain, price_credits = EXCLUDED.price_credits, concept = EXCLUDED.concept, theme = EXCLUDED.theme, attributes = EXCLUDED.attributes, status = EXCLUDED.status, error_message = '', correlation_id = EXCLUDED.correlation_id, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
		WHERE mint_requests.status = $16
	`

	result, err := r.querier.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.IdempotencyKey,
		req.AssetDraftID,
		req.CollectionID,
		req.Chain,
		req.PriceCredits,
		req.Meta.Concept,
		req.Meta.Theme,
		attributes,
		req.Status,
		req.ErrorMessage,
		req.CorrelationID,
		req.CreatedAt,
		req.UpdatedAt,
		shared.RequestStatusFailed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return minting.ErrDuplicateRequest{UserID: req.UserID, IdempotencyKey: req.IdempotencyKey}
		}
		r.logger.Error("Failed to create mint request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to create mint request: %w", err)
	}

	if result.RowsAffected() == 0 {
		// The pair is held by a live or completed request, not a failed one
		return minting.ErrDuplicateRequest{UserID: req.UserID, IdempotencyKey: req.IdempotencyKey}
	}

	return nil
}

// GetByID retrieves a mint request by its ID
func (r *MintRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*minting.Request, error) {
	query := selectRequestQuery + ` WHERE id = $1`

	req, err := r.scanRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, minting.ErrRequestNotFound{ID: id}
		}
		r.logger.Error("Failed to get mint request", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get mint request: %w", err)
	}

	return req, nil
}

// GetByUserAndKey retrieves a mint request by its idempotency pair.
// Returns nil, nil when no request exists.
func (r *MintRequestRepository) GetByUserAndKey(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*minting.Request, error) {
	query := selectRequestQuery + ` WHERE user_id = $1 AND idempotency_key = $2`

	req, err := r.scanRequest(r.querier.QueryRow(ctx, query, userID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get mint request by key", "user_id", userID.String(), "idempotency_key", idempotencyKey, "error", err)
		return nil, fmt.Errorf("failed to get mint request by key: %w", err)
	}

	return req, nil
}

// UpdateStatus moves a mint request to a new status, recording the error
// message for failures. Returns ErrRequestNotFound if the request is missing.
func (r *MintRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shared.RequestStatus, errorMessage string) error {
	query := `
		UPDATE mint_requests
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, errorMessage, id)
	if err != nil {
		r.logger.Error("Failed to update mint request status", "id", id.String(), "status", string(status), "error", err)
		return fmt.Errorf("failed to update mint request status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return minting.ErrRequestNotFound{ID: id}
	}

	return nil
}

// UpsertFailed records a FAILED mint request outside the saga transaction.
// After a rollback the PROCESSING row written inside the transaction is gone,
// so this inserts the row fresh; if a later attempt already re-created the
// pair, the existing row is annotated instead.
func (r *MintRequestRepository) UpsertFailed(ctx context.Context, req *minting.Request, errorMessage string) error {
	attributes, err := json.Marshal(req.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal request attributes: %w", err)
	}

	query := `
		INSERT INTO mint_requests (id, user_id, idempotency_key, asset_draft_id, collection_id, chain, price_credits, concept, theme, attributes, status, error_message, correlation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (user_id, idempotency_key)
		DO UPDATE SET status = EXCLUDED.status, error_message = EXCLUDED.error_message, updated_at = NOW()
	`

	_, err = r.querier.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.IdempotencyKey,
		req.AssetDraftID,
		req.CollectionID,
		req.Chain,
		req.PriceCredits,
		req.Meta.Concept,
		req.Meta.Theme,
		attributes,
		shared.RequestStatusFailed,
		errorMessage,
		req.CorrelationID,
		req.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert failed mint request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to upsert failed mint request: %w", err)
	}

	return nil
}

const selectRequestQuery = `
	SELECT id, user_id, idempotency_key, asset_draft_id, collection_id, chain, price_credits, concept, theme, attributes, status, error_message, correlation_id, created_at, updated_at
	FROM mint_requests`

func (r *MintRequestRepository) scanRequest(row pgx.Row) (*minting.Request, error) {
	var req minting.Request
	var attributes []byte
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.IdempotencyKey,
		&req.AssetDraftID,
		&req.CollectionID,
		&req.Chain,
		&req.PriceCredits,
		&req.Meta.Concept,
		&req.Meta.Theme,
		&attributes,
		&req.Status,
		&req.ErrorMessage,
		&req.CorrelationID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &req.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request attributes: %w", err)
		}
	}

	return &req, nil
}
