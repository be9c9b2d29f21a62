package listener

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

// authorAnnotation is attached to every field the validator rewrites
const authorAnnotation = "Author name was automatically formatted as Surname, Given"

// AuthorValidatorHandler reacts to sheet.validate by normalizing each
// record's author field to "Surname, Given" and writing the patched
// records back. Each record is validated independently; no cross-record
// state, so the pass is safe in any order.
type AuthorValidatorHandler struct {
	platform        PlatformAPI
	journal         DeliveryJournal
	logger          *zap.Logger
	maxRecordErrors int
}

// NewAuthorValidatorHandler creates the handler
func NewAuthorValidatorHandler(platform PlatformAPI, journal DeliveryJournal, logger *zap.Logger, maxRecordErrors int) *AuthorValidatorHandler {
	return &AuthorValidatorHandler{
		platform:        platform,
		journal:         journal,
		logger:          logger,
		maxRecordErrors: maxRecordErrors,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AuthorValidatorHandler) EventTypes() []string {
	return []string{sheet.EventSheetValidate}
}

// Handle normalizes author fields across the sheet's records
func (h *AuthorValidatorHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	validate, ok := event.(*sheet.SheetValidateEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sheet.EventSheetValidate, event.EventType())
	}

	start := time.Now()
	entry := newDeliveryEntry(event, start)

	records, err := h.platform.ListRecords(ctx, validate.SheetID)
	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.ErrorDetail = err.Error()
		appendJournal(ctx, h.journal, h.logger, entry, start)
		return fmt.Errorf("failed to list records for sheet %s: %w", validate.SheetID, err)
	}

	patched, errs := h.validateBatch(records)

	if len(patched) > 0 {
		if err := h.platform.UpdateRecords(ctx, validate.SheetID, patched); err != nil {
			entry.Outcome = OutcomeFailed
			entry.ErrorDetail = err.Error()
			appendJournal(ctx, h.journal, h.logger, entry, start)
			return fmt.Errorf("failed to write back normalized records: %w", err)
		}
	}

	h.logger.Info("author validation pass finished",
		zap.String("sheet_id", validate.SheetID),
		zap.Int("records", len(records)),
		zap.Int("rewritten", len(patched)),
		zap.Int("invalid", errs.TotalCount()),
	)

	entry.Outcome = OutcomeCompleted
	if errs.HasErrors() {
		entry.Outcome = OutcomeCompletedWithErrors
		entry.RecordErrors = errs.Errors()
	}
	appendJournal(ctx, h.journal, h.logger, entry, start)
	return nil
}

// validateBatch runs the normalization over a batch and returns the
// records that changed plus the per-record format errors
func (h *AuthorValidatorHandler) validateBatch(records []sheet.Record) ([]sheet.Record, *sheet.ErrorCollection) {
	patched := make([]sheet.Record, 0)
	errs := sheet.NewErrorCollection(h.maxRecordErrors)

	for i, rec := range records {
		fv, ok := rec.Get(sheet.AuthorField)
		if !ok || fv.Value == nil {
			continue
		}

		raw, isString := fv.Value.(string)
		if !isString {
			errs.Add(sheet.NewRecordError(i, rec.ID, sheet.AuthorField, sheet.ErrCodeInvalidType,
				"author must be a string").WithValue(fmt.Sprintf("%v", fv.Value)))
			continue
		}

		normalized, changed, valid := sheet.NormalizeAuthor(raw)
		if !valid {
			errs.Add(sheet.NewRecordError(i, rec.ID, sheet.AuthorField, sheet.ErrCodeInvalidFormat,
				"author must be a given name and a surname").WithValue(raw))
			continue
		}
		if !changed {
			continue
		}

		out := rec.Clone()
		out.Set(sheet.AuthorField, normalized)
		out.Annotate(sheet.AuthorField, sheet.MessageInfo, authorAnnotation)
		patched = append(patched, out)
	}

	return patched, errs
}

// Ensure AuthorValidatorHandler implements EventHandler
var _ shared.EventHandler = (*AuthorValidatorHandler)(nil)
