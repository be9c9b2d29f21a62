package listener

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
)

// newDeliveryEntry seeds a journal entry from the triggering event
func newDeliveryEntry(event shared.DomainEvent, start time.Time) DeliveryEntry {
	return DeliveryEntry{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		WorkspaceID:   event.WorkspaceID(),
		EnvironmentID: event.EnvironmentID(),
		OccurredAt:    start,
	}
}

// appendJournal persists a delivery entry. Journaling is best-effort: a
// journal failure is logged but never fails the delivery itself.
func appendJournal(ctx context.Context, journal DeliveryJournal, logger *zap.Logger, entry DeliveryEntry, start time.Time) {
	if journal == nil {
		return
	}
	entry.Duration = time.Since(start)
	if err := journal.Append(ctx, entry); err != nil {
		logger.Warn("failed to journal delivery",
			zap.String("event_id", entry.EventID),
			zap.String("event_type", entry.EventType),
			zap.Error(err),
		)
	}
}
