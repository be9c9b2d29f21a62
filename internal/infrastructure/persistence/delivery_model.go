package persistence

import (
	"encoding/json"
	"time"

	"github.com/sheetflow/listener/internal/application/listener"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

// DeliveryModel is the journal row for one handled webhook delivery
type DeliveryModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	EventID       string `gorm:"type:varchar(64);index"`
	EventType     string `gorm:"type:varchar(64);index"`
	WorkspaceID   string `gorm:"type:varchar(64);index"`
	EnvironmentID string `gorm:"type:varchar(64)"`
	Outcome       string `gorm:"type:varchar(32)"`
	ErrorDetail   string `gorm:"type:text"`
	RecordErrors  string `gorm:"type:text"` // JSON-encoded []sheet.RecordError
	DurationMS    int64
	OccurredAt    time.Time
	CreatedAt     time.Time
}

// TableName sets the journal table name
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// newDeliveryModel converts an application-layer entry to its row form
func newDeliveryModel(entry listener.DeliveryEntry) (DeliveryModel, error) {
	model := DeliveryModel{
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		WorkspaceID:   entry.WorkspaceID,
		EnvironmentID: entry.EnvironmentID,
		Outcome:       entry.Outcome,
		ErrorDetail:   entry.ErrorDetail,
		DurationMS:    entry.Duration.Milliseconds(),
		OccurredAt:    entry.OccurredAt,
	}

	if len(entry.RecordErrors) > 0 {
		raw, err := json.Marshal(entry.RecordErrors)
		if err != nil {
			return DeliveryModel{}, err
		}
		model.RecordErrors = string(raw)
	}

	return model, nil
}

// ToEntry converts a row back to the application-layer entry
func (m DeliveryModel) ToEntry() listener.DeliveryEntry {
	entry := listener.DeliveryEntry{
		EventID:       m.EventID,
		EventType:     m.EventType,
		WorkspaceID:   m.WorkspaceID,
		EnvironmentID: m.EnvironmentID,
		Outcome:       m.Outcome,
		ErrorDetail:   m.ErrorDetail,
		Duration:      time.Duration(m.DurationMS) * time.Millisecond,
		OccurredAt:    m.OccurredAt,
	}

	if m.RecordErrors != "" {
		var recordErrors []sheet.RecordError
		if err := json.Unmarshal([]byte(m.RecordErrors), &recordErrors); err == nil {
			entry.RecordErrors = recordErrors
		}
	}

	return entry
}
