package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sheetflow/listener/internal/application/listener"
)

// GormDeliveryJournal implements the delivery journal using GORM
type GormDeliveryJournal struct {
	db *gorm.DB
}

// NewGormDeliveryJournal creates a new GormDeliveryJournal
func NewGormDeliveryJournal(db *gorm.DB) *GormDeliveryJournal {
	return &GormDeliveryJournal{db: db}
}

// Append persists one handled delivery
func (r *GormDeliveryJournal) Append(ctx context.Context, entry listener.DeliveryEntry) error {
	model, err := newDeliveryModel(entry)
	if err != nil {
		return fmt.Errorf("failed to encode delivery entry: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append delivery entry: %w", err)
	}
	return nil
}

// Recent returns the most recently journaled deliveries, newest first
func (r *GormDeliveryJournal) Recent(ctx context.Context, limit int) ([]listener.DeliveryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []DeliveryModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list delivery entries: %w", err)
	}

	entries := make([]listener.DeliveryEntry, len(models))
	for i, m := range models {
		entries[i] = m.ToEntry()
	}
	return entries, nil
}

// Ensure GormDeliveryJournal implements the application-layer port
var _ listener.DeliveryJournal = (*GormDeliveryJournal)(nil)
