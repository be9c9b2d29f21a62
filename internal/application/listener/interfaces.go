// Package listener holds the event handlers that react to platform
// deliveries: workspace configuration, record validation, the
// purchase-order transform and its mail egress.
package listener

import (
	"context"
	"time"

	"github.com/sheetflow/listener/internal/domain/sheet"
)

// PlatformAPI is the slice of the import platform's API the listener
// consumes. Implemented by the infrastructure layer; handlers receive it
// injected so tests can substitute a double.
type PlatformAPI interface {
	// ApplyBlueprint pushes a sheet schema to a workspace
	ApplyBlueprint(ctx context.Context, workspaceID string, blueprint sheet.Blueprint) error

	// ListSheets returns the workspace's sheets
	ListSheets(ctx context.Context, workspaceID string) ([]sheet.Sheet, error)

	// ListRecords returns all records of a sheet
	ListRecords(ctx context.Context, sheetID string) ([]sheet.Record, error)

	// InsertRecords appends new records to a sheet
	InsertRecords(ctx context.Context, sheetID string, records []sheet.Record) error

	// UpdateRecords writes modified records back to their sheet
	UpdateRecords(ctx context.Context, sheetID string, records []sheet.Record) error

	// ExportCSV returns the sheet's live record set serialized as CSV
	ExportCSV(ctx context.Context, sheetID string) ([]byte, error)

	// GetSecret resolves a named secret scoped to an environment.
	// A missing secret is an error, wrapping shared.ErrNotFound.
	GetSecret(ctx context.Context, environmentID, name string) (string, error)
}

// MailCredentials authenticate one transport session. Resolved per
// invocation from the platform's secret store, never cached.
type MailCredentials struct {
	Username string
	Password string
}

// Attachment is a named byte blob attached to an outgoing message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MailMessage is one outgoing email
type MailMessage struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// MailSender delivers a single message over an authenticated transport
// session. The send is awaited; implementations do not retry.
type MailSender interface {
	Send(ctx context.Context, creds MailCredentials, msg MailMessage) error
}

// Archiver stores a copy of an egress payload in object storage
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) error
}

// Delivery outcomes recorded in the journal
const (
	OutcomeCompleted           = "completed"
	OutcomeCompletedWithErrors = "completed_with_errors"
	OutcomeFailed              = "failed"
)

// DeliveryEntry is one journaled webhook delivery and its outcome
type DeliveryEntry struct {
	EventID       string
	EventType     string
	WorkspaceID   string
	EnvironmentID string
	Outcome       string
	ErrorDetail   string
	RecordErrors  []sheet.RecordError
	Duration      time.Duration
	OccurredAt    time.Time
}

// DeliveryJournal persists handled deliveries for operator inspection
type DeliveryJournal interface {
	Append(ctx context.Context, entry DeliveryEntry) error
}
