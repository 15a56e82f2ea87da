package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryRecord is one completed analysis, append-only.
type HistoryRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	DeviceID  string         `gorm:"index;size:64" json:"deviceId"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
	Image     string         `gorm:"type:text" json:"image"`
	Result    datatypes.JSON `gorm:"type:json" json:"result"`
}

func (HistoryRecord) TableName() string {
	return "analysis_history"
}

// HistoryRepository persists analysis history records.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores a new record; a missing ID or timestamp is filled in.
func (r *HistoryRepository) Append(ctx context.Context, record *HistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// List returns records for a device, newest first, capped at limit.
func (r *HistoryRepository) List(ctx context.Context, deviceID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []HistoryRecord
	query := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	return records, nil
}

// Get fetches one record by its identifier.
func (r *HistoryRepository) Get(ctx context.Context, id string) (*HistoryRecord, error) {
	var record HistoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get history record %s: %w", id, err)
	}
	return &record, nil
}

// Delete removes one record by its identifier.
func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&HistoryRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete history record %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count reports the total number of stored records.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&HistoryRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count history records: %w", err)
	}
	return count, nil
}
