package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/audit"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	auditRepo audit.Repository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo audit.Repository) AuditService {
	return &AuditServiceImpl{
		auditRepo: auditRepo,
	}
}

// GetEventsByActorID retrieves paginated audit events for a user from the
// MongoDB projection. The projection is eventually consistent with the
// outbox, so a just-minted asset may take a poll cycle to appear.
func (s *AuditServiceImpl) GetEventsByActorID(ctx context.Context, actorID uuid.UUID, page, perPage int) ([]*audit.Event, int64, error) {
	offset := (page - 1) * perPage

	events, err := s.auditRepo.GetByActorID(ctx, actorID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.auditRepo.CountByActorID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
