package listener

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

// WorkspaceConfigureHandler reacts to workspace.created by pushing the
// declared blueprint to the new workspace
type WorkspaceConfigureHandler struct {
	platform  PlatformAPI
	blueprint sheet.Blueprint
	journal   DeliveryJournal
	logger    *zap.Logger
}

// NewWorkspaceConfigureHandler creates the handler with the default
// blueprint
func NewWorkspaceConfigureHandler(platform PlatformAPI, journal DeliveryJournal, logger *zap.Logger) *WorkspaceConfigureHandler {
	return &WorkspaceConfigureHandler{
		platform:  platform,
		blueprint: sheet.DefaultBlueprint(),
		journal:   journal,
		logger:    logger,
	}
}

// WithBlueprint overrides the blueprint pushed to new workspaces
func (h *WorkspaceConfigureHandler) WithBlueprint(bp sheet.Blueprint) *WorkspaceConfigureHandler {
	h.blueprint = bp
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *WorkspaceConfigureHandler) EventTypes() []string {
	return []string{sheet.EventWorkspaceCreated}
}

// Handle applies the blueprint to the created workspace
func (h *WorkspaceConfigureHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*sheet.WorkspaceCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sheet.EventWorkspaceCreated, event.EventType())
	}

	start := time.Now()
	entry := newDeliveryEntry(event, start)

	if err := h.platform.ApplyBlueprint(ctx, created.WorkspaceID(), h.blueprint); err != nil {
		entry.Outcome = OutcomeFailed
		entry.ErrorDetail = err.Error()
		appendJournal(ctx, h.journal, h.logger, entry, start)
		return fmt.Errorf("failed to apply blueprint to workspace %s: %w", created.WorkspaceID(), err)
	}

	h.logger.Info("blueprint applied",
		zap.String("workspace_id", created.WorkspaceID()),
		zap.Int("sheets", len(h.blueprint.Sheets)),
	)

	entry.Outcome = OutcomeCompleted
	appendJournal(ctx, h.journal, h.logger, entry, start)
	return nil
}

// Ensure WorkspaceConfigureHandler implements EventHandler
var _ shared.EventHandler = (*WorkspaceConfigureHandler)(nil)
