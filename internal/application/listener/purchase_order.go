package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/order"
	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

// Secret names resolved from the platform's environment-scoped store
const (
	SecretEmail    = "email"
	SecretPassword = "password"
)

// Fixed egress message content
const (
	egressSubject    = "Purchase Order"
	egressBody       = "Attached"
	egressAttachment = "orders.csv"
	csvContentType   = "text/csv"
)

// PurchaseOrderConfig configures the transform and its egress
type PurchaseOrderConfig struct {
	// InventorySlug identifies the source sheet holding stock levels
	InventorySlug string

	// OrdersSlug identifies the destination sheet for purchase lines
	OrdersSlug string

	// TriggerJobKind is the job kind whose completion runs the transform
	TriggerJobKind string

	// ReorderTarget is the stock level to replenish up to
	ReorderTarget int64

	// Recipient receives the purchase-order email
	Recipient string

	// MaxRecordErrors caps the per-record errors kept in the journal
	MaxRecordErrors int
}

// PurchaseOrderHandler reacts to job.completed for the configured job
// kind: it computes purchase-order lines from the inventory sheet, inserts
// them into the orders sheet, then emails the orders sheet's live CSV
// export to the configured recipient.
//
// Re-running against an unchanged inventory sheet inserts the same lines
// again; deduplication is left to the dedupe action on the platform.
type PurchaseOrderHandler struct {
	platform PlatformAPI
	mail     MailSender
	archiver Archiver
	journal  DeliveryJournal
	policy   order.ReorderPolicy
	config   PurchaseOrderConfig
	logger   *zap.Logger
}

// NewPurchaseOrderHandler creates the handler
func NewPurchaseOrderHandler(platform PlatformAPI, mail MailSender, journal DeliveryJournal, cfg PurchaseOrderConfig, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		platform: platform,
		mail:     mail,
		journal:  journal,
		policy:   order.NewReorderPolicy(cfg.ReorderTarget),
		config:   cfg,
		logger:   logger,
	}
}

// WithArchiver enables archival of the egressed CSV to object storage
func (h *PurchaseOrderHandler) WithArchiver(archiver Archiver) *PurchaseOrderHandler {
	h.archiver = archiver
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseOrderHandler) EventTypes() []string {
	return []string{sheet.EventJobCompleted}
}

// Handle runs the transform and egress for a completed mapping job
func (h *PurchaseOrderHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*sheet.JobCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			sheet.EventJobCompleted, event.EventType())
	}

	if completed.JobKind != h.config.TriggerJobKind {
		h.logger.Debug("ignoring job of non-trigger kind",
			zap.String("job_id", completed.JobID),
			zap.String("job_kind", completed.JobKind),
		)
		return nil
	}

	start := time.Now()
	entry := newDeliveryEntry(event, start)

	errs, err := h.process(ctx, completed)
	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.ErrorDetail = err.Error()
		appendJournal(ctx, h.journal, h.logger, entry, start)
		return err
	}

	entry.Outcome = OutcomeCompleted
	if errs.HasErrors() {
		entry.Outcome = OutcomeCompletedWithErrors
		entry.RecordErrors = errs.Errors()
	}
	appendJournal(ctx, h.journal, h.logger, entry, start)
	return nil
}

func (h *PurchaseOrderHandler) process(ctx context.Context, event *sheet.JobCompletedEvent) (*sheet.ErrorCollection, error) {
	sheets, err := h.platform.ListSheets(ctx, event.WorkspaceID())
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets for workspace %s: %w", event.WorkspaceID(), err)
	}

	inventory, ok := sheet.FindBySlug(sheets, h.config.InventorySlug)
	if !ok {
		return nil, fmt.Errorf("inventory sheet %q: %w", h.config.InventorySlug, shared.ErrSheetNotFound)
	}
	orders, ok := sheet.FindBySlug(sheets, h.config.OrdersSlug)
	if !ok {
		return nil, fmt.Errorf("orders sheet %q: %w", h.config.OrdersSlug, shared.ErrSheetNotFound)
	}

	records, err := h.platform.ListRecords(ctx, inventory.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}

	lines, errs := h.policy.Plan(records)
	if errs.HasErrors() {
		h.logger.Warn("inventory records with invalid stock excluded from transform",
			zap.Int("invalid", errs.TotalCount()),
			zap.Bool("truncated", errs.IsTruncated()),
		)
	}

	if len(lines) > 0 {
		if err := h.platform.InsertRecords(ctx, orders.ID, lines); err != nil {
			return nil, fmt.Errorf("failed to insert purchase-order lines: %w", err)
		}
	}

	h.logger.Info("purchase-order transform finished",
		zap.String("job_id", event.JobID),
		zap.Int("inventory_records", len(records)),
		zap.Int("order_lines", len(lines)),
	)

	if err := h.egress(ctx, event, orders); err != nil {
		return nil, err
	}

	return errs, nil
}

// egress exports the orders sheet's live state as CSV and mails it.
// Secrets are resolved per invocation; a missing one fails the handler
// before any transport call.
func (h *PurchaseOrderHandler) egress(ctx context.Context, event *sheet.JobCompletedEvent, orders sheet.Sheet) error {
	csv, err := h.platform.ExportCSV(ctx, orders.ID)
	if err != nil {
		return fmt.Errorf("failed to export orders sheet: %w", err)
	}

	email, err := h.resolveSecret(ctx, event.EnvironmentID(), SecretEmail)
	if err != nil {
		return err
	}
	password, err := h.resolveSecret(ctx, event.EnvironmentID(), SecretPassword)
	if err != nil {
		return err
	}

	msg := MailMessage{
		From:    email,
		To:      h.config.Recipient,
		Subject: egressSubject,
		Body:    egressBody,
		Attachments: []Attachment{
			{Filename: egressAttachment, ContentType: csvContentType, Data: csv},
		},
	}

	if err := h.mail.Send(ctx, MailCredentials{Username: email, Password: password}, msg); err != nil {
		return fmt.Errorf("failed to send purchase-order mail: %w", err)
	}

	h.logger.Info("purchase-order mail sent",
		zap.String("recipient", h.config.Recipient),
		zap.Int("csv_bytes", len(csv)),
	)

	if h.archiver != nil {
		key := fmt.Sprintf("orders/%s/%s.csv", event.WorkspaceID(), event.EventID())
		if err := h.archiver.Archive(ctx, key, csv, csvContentType); err != nil {
			// The mail already went out; archival is supplementary
			h.logger.Warn("failed to archive egressed CSV",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return nil
}

// resolveSecret fetches one credential from the platform. An absent secret
// is a missing-credential failure; transport or authorization failures
// propagate as what they are.
func (h *PurchaseOrderHandler) resolveSecret(ctx context.Context, environmentID, name string) (string, error) {
	value, err := h.platform.GetSecret(ctx, environmentID, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("secret %q: %v: %w", name, err, shared.ErrMissingCredential)
		}
		return "", fmt.Errorf("failed to resolve secret %q: %w", name, err)
	}
	return value, nil
}

// Ensure PurchaseOrderHandler implements EventHandler
var _ shared.EventHandler = (*PurchaseOrderHandler)(nil)
