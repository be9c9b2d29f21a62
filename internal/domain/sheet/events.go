package sheet

import "github.com/sheetflow/listener/internal/domain/shared"

// Event types delivered by the platform
const (
	EventWorkspaceCreated = "workspace.created"
	EventJobCompleted     = "job.completed"
	EventSheetValidate    = "sheet.validate"
)

// JobKindMapWorkbook is the job kind whose completion triggers the
// purchase-order transform
const JobKindMapWorkbook = "workbook:map"

// WorkspaceCreatedEvent signals that a new workspace exists and needs its
// blueprint applied
type WorkspaceCreatedEvent struct {
	shared.BaseDomainEvent
}

// NewWorkspaceCreatedEvent builds the event from a webhook delivery
func NewWorkspaceCreatedEvent(deliveryID, workspaceID, environmentID string) *WorkspaceCreatedEvent {
	return &WorkspaceCreatedEvent{
		BaseDomainEvent: shared.NewDeliveryDomainEvent(deliveryID, EventWorkspaceCreated, workspaceID, environmentID),
	}
}

// JobCompletedEvent signals that a platform job finished for a workspace
type JobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID   string `json:"job_id"`
	JobKind string `json:"job_kind"`
}

// NewJobCompletedEvent builds the event from a webhook delivery
func NewJobCompletedEvent(deliveryID, workspaceID, environmentID, jobID, jobKind string) *JobCompletedEvent {
	return &JobCompletedEvent{
		BaseDomainEvent: shared.NewDeliveryDomainEvent(deliveryID, EventJobCompleted, workspaceID, environmentID),
		JobID:           jobID,
		JobKind:         jobKind,
	}
}

// SheetValidateEvent asks the listener to run its record hooks over a sheet
type SheetValidateEvent struct {
	shared.BaseDomainEvent
	SheetID string `json:"sheet_id"`
}

// NewSheetValidateEvent builds the event from a webhook delivery
func NewSheetValidateEvent(deliveryID, workspaceID, environmentID, sheetID string) *SheetValidateEvent {
	return &SheetValidateEvent{
		BaseDomainEvent: shared.NewDeliveryDomainEvent(deliveryID, EventSheetValidate, workspaceID, environmentID),
		SheetID:         sheetID,
	}
}
