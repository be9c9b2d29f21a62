// Package handler holds the gin handlers for the webhook intake surface.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
	"github.com/sheetflow/listener/internal/interfaces/http/middleware"
)

// WebhookHandler receives platform deliveries and publishes them onto the
// event bus. A handler failure fails the delivery, so the platform marks
// the originating job failed.
type WebhookHandler struct {
	bus    shared.EventPublisher
	logger *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(bus shared.EventPublisher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		bus:    bus,
		logger: logger,
	}
}

// DeliveryContext carries the identifiers a delivery is scoped to
type DeliveryContext struct {
	WorkspaceID   string `json:"workspace_id" binding:"required"`
	EnvironmentID string `json:"environment_id" binding:"required"`
	SheetID       string `json:"sheet_id,omitempty"`
	JobID         string `json:"job_id,omitempty"`
}

// DeliveryPayload carries event-type-specific fields
type DeliveryPayload struct {
	JobKind string `json:"job_kind,omitempty"`
}

// DeliveryRequest is the platform's webhook envelope
type DeliveryRequest struct {
	ID      string          `json:"id" binding:"required"`
	Type    string          `json:"type" binding:"required,eventname"`
	Context DeliveryContext `json:"context" binding:"required"`
	Payload DeliveryPayload `json:"payload"`
}

// DeliveryResponse acknowledges a webhook delivery
type DeliveryResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandleDelivery receives one platform delivery
func (h *WebhookHandler) HandleDelivery(c *gin.Context) {
	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, DeliveryResponse{
			Received: false,
			Message:  "Invalid delivery payload: " + middleware.ValidationMessage(err),
		})
		return
	}

	event, ok := h.toDomainEvent(req)
	if !ok {
		// Unknown event types are acknowledged so the platform stops
		// redelivering them
		h.logger.Debug("ignoring delivery of unhandled type",
			zap.String("delivery_id", req.ID),
			zap.String("type", req.Type),
		)
		c.JSON(http.StatusOK, DeliveryResponse{
			Received: true,
			Message:  "Event type not handled",
		})
		return
	}

	if err := h.bus.Publish(c.Request.Context(), event); err != nil {
		h.logger.Error("delivery processing failed",
			zap.String("delivery_id", req.ID),
			zap.String("type", req.Type),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, DeliveryResponse{
			Received: false,
			EventID:  event.EventID().String(),
			Message:  "Delivery processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, DeliveryResponse{
		Received: true,
		EventID:  event.EventID().String(),
	})
}

// toDomainEvent maps a delivery envelope to its typed domain event
func (h *WebhookHandler) toDomainEvent(req DeliveryRequest) (shared.DomainEvent, bool) {
	ctx := req.Context
	switch req.Type {
	case sheet.EventWorkspaceCreated:
		return sheet.NewWorkspaceCreatedEvent(req.ID, ctx.WorkspaceID, ctx.EnvironmentID), true
	case sheet.EventJobCompleted:
		return sheet.NewJobCompletedEvent(req.ID, ctx.WorkspaceID, ctx.EnvironmentID, ctx.JobID, req.Payload.JobKind), true
	case sheet.EventSheetValidate:
		return sheet.NewSheetValidateEvent(req.ID, ctx.WorkspaceID, ctx.EnvironmentID, ctx.SheetID), true
	default:
		return nil, false
	}
}
