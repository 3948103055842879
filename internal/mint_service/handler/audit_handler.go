package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/audit"
	"github.com/nft-minting-service/internal/mint_service/service"
)

// AuditHandler handles HTTP requests for audit trail reads
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetByActorID retrieves paginated audit events for a user
func (h *AuditHandler) GetByActorID(c *gin.Context) {
	userIDParam := c.Param("userId")
	actorID, err := uuid.Parse(userIDParam)
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

	events, total, err := h.auditService.GetEventsByActorID(
		c.Request.Context(),
		actorID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get audit events", "user_id", userIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var responses []AuditEventResponse
	for _, event := range events {
		responses = append(responses, mapAuditEventToResponse(event))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// mapAuditEventToResponse maps an audit event to a response DTO
func mapAuditEventToResponse(event *audit.Event) AuditEventResponse {
	return AuditEventResponse{
		ID:            event.ID.String(),
		ActorID:       event.ActorID.String(),
		Action:        string(event.Action),
		EntityType:    string(event.EntityType),
		EntityID:      event.EntityID,
		MintRequestID: event.MintRequestID.String(),
		ContentHash:   event.ContentHash,
		OccurredAt:    event.OccurredAt.Format(time.RFC3339),
	}
}
