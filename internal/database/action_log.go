package database

import (
	"context"

	"gorm.io/gorm"
)

type ActionLog struct {
	db *gorm.DB
}

func NewActionLog(db *gorm.DB) *ActionLog {
	return &ActionLog{db: db}
}

func (l *ActionLog) Save(ctx context.Context, record *ActionRecord) error {
	return l.db.WithContext(ctx).Save(record).Error
}

// Recent returns the newest records first. A non-positive limit returns
// everything.
func (l *ActionLog) Recent(ctx context.Context, targetKey string, limit int) ([]ActionRecord, error) {
	query := l.db.WithContext(ctx).Order("requested_at DESC")
	if targetKey != "" {
		query = query.Where("target_key = ?", targetKey)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []ActionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
