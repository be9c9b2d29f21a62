package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a platform lifecycle event delivered to the listener
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	WorkspaceID() string
	EnvironmentID() string
}

// BaseDomainEvent provides common fields for all platform events
type BaseDomainEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Workspace   string    `json:"workspace_id"`
	Environment string    `json:"environment_id"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// WorkspaceID returns the workspace the event is scoped to
func (e *BaseDomainEvent) WorkspaceID() string {
	return e.Workspace
}

// EnvironmentID returns the environment the event is scoped to
func (e *BaseDomainEvent) EnvironmentID() string {
	return e.Environment
}

// NewBaseDomainEvent creates a new base event with a fresh identifier
func NewBaseDomainEvent(eventType, workspaceID, environmentID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New(),
		Type:        eventType,
		Timestamp:   time.Now(),
		Workspace:   workspaceID,
		Environment: environmentID,
	}
}

// deliveryNamespace scopes delivery-derived event IDs so the same platform
// delivery always maps to the same event ID (idempotency relies on this).
var deliveryNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewDeliveryDomainEvent creates a base event whose ID is derived from the
// platform's delivery ID. Redelivered webhooks therefore carry identical
// event IDs.
func NewDeliveryDomainEvent(deliveryID, eventType, workspaceID, environmentID string) BaseDomainEvent {
	e := NewBaseDomainEvent(eventType, workspaceID, environmentID)
	if deliveryID != "" {
		e.ID = uuid.NewSHA1(deliveryNamespace, []byte(deliveryID))
	}
	return e
}
