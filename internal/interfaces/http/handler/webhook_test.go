package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
	"github.com/sheetflow/listener/internal/interfaces/http/middleware"
)

// fakeBus records published events
type fakeBus struct {
	published  []shared.DomainEvent
	publishErr error
}

func (f *fakeBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, events...)
	return nil
}

func newWebhookRouter(bus *fakeBus) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	engine := gin.New()
	h := NewWebhookHandler(bus, zap.NewNop())
	engine.POST("/webhooks/platform", h.HandleDelivery)
	return engine
}

func postDelivery(t *testing.T, engine *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/platform", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_WorkspaceCreated(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	w := postDelivery(t, engine, DeliveryRequest{
		ID:   "dlv-1",
		Type: "workspace.created",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, bus.published, 1)
	ev, ok := bus.published[0].(*sheet.WorkspaceCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "ws-1", ev.WorkspaceID())
	assert.Equal(t, "env-1", ev.EnvironmentID())
}

func TestWebhookHandler_JobCompletedCarriesKind(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	w := postDelivery(t, engine, DeliveryRequest{
		ID:   "dlv-2",
		Type: "job.completed",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
			JobID:         "job-9",
		},
		Payload: DeliveryPayload{JobKind: "workbook:map"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, bus.published, 1)
	ev, ok := bus.published[0].(*sheet.JobCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "job-9", ev.JobID)
	assert.Equal(t, "workbook:map", ev.JobKind)
}

func TestWebhookHandler_SheetValidate(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	w := postDelivery(t, engine, DeliveryRequest{
		ID:   "dlv-3",
		Type: "sheet.validate",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
			SheetID:       "sh-7",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, bus.published, 1)
	ev, ok := bus.published[0].(*sheet.SheetValidateEvent)
	require.True(t, ok)
	assert.Equal(t, "sh-7", ev.SheetID)
}

func TestWebhookHandler_RedeliverySameEventID(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	body := DeliveryRequest{
		ID:   "dlv-4",
		Type: "workspace.created",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
		},
	}
	postDelivery(t, engine, body)
	postDelivery(t, engine, body)

	require.Len(t, bus.published, 2)
	assert.Equal(t, bus.published[0].EventID(), bus.published[1].EventID(),
		"the same delivery ID must map to the same event ID")
}

func TestWebhookHandler_UnknownTypeAcknowledged(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	w := postDelivery(t, engine, DeliveryRequest{
		ID:   "dlv-5",
		Type: "agent.created",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, bus.published)
}

func TestWebhookHandler_InvalidPayloadRejected(t *testing.T) {
	bus := &fakeBus{}
	engine := newWebhookRouter(bus)

	// missing the required context
	w := postDelivery(t, engine, map[string]any{"id": "dlv-6", "type": "workspace.created"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, bus.published)
}

func TestWebhookHandler_HandlerFailureFailsDelivery(t *testing.T) {
	bus := &fakeBus{publishErr: errors.New("transform failed")}
	engine := newWebhookRouter(bus)

	w := postDelivery(t, engine, DeliveryRequest{
		ID:   "dlv-7",
		Type: "job.completed",
		Context: DeliveryContext{
			WorkspaceID:   "ws-1",
			EnvironmentID: "env-1",
			JobID:         "job-1",
		},
		Payload: DeliveryPayload{JobKind: "workbook:map"},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp DeliveryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Received)
}
