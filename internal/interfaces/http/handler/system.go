package handler

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sheetflow/listener/internal/application/listener"
)

// DeliveryLister lists recently journaled deliveries
type DeliveryLister interface {
	Recent(ctx context.Context, limit int) ([]listener.DeliveryEntry, error)
}

// SystemHandler serves health and operator inspection endpoints
type SystemHandler struct {
	journal   DeliveryLister
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(journal DeliveryLister) *SystemHandler {
	return &SystemHandler{
		journal:   journal,
		startTime: time.Now(),
	}
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports service liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// DeliveryView is the journal entry shape exposed to operators
type DeliveryView struct {
	EventID      string `json:"event_id"`
	EventType    string `json:"event_type"`
	WorkspaceID  string `json:"workspace_id"`
	Outcome      string `json:"outcome"`
	ErrorDetail  string `json:"error_detail,omitempty"`
	RecordErrors int    `json:"record_errors"`
	DurationMS   int64  `json:"duration_ms"`
	OccurredAt   string `json:"occurred_at"`
}

// RecentDeliveries lists the most recently handled deliveries
func (h *SystemHandler) RecentDeliveries(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"code": "JOURNAL_DISABLED", "message": "Delivery journal is not configured"},
		})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "JOURNAL_ERROR", "message": "Failed to list deliveries"},
		})
		return
	}

	views := make([]DeliveryView, len(entries))
	for i, e := range entries {
		views[i] = DeliveryView{
			EventID:      e.EventID,
			EventType:    e.EventType,
			WorkspaceID:  e.WorkspaceID,
			Outcome:      e.Outcome,
			ErrorDetail:  e.ErrorDetail,
			RecordErrors: len(e.RecordErrors),
			DurationMS:   e.Duration.Milliseconds(),
			OccurredAt:   e.OccurredAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}
