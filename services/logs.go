package services

import (
	"context"
	"time"

	"github.com/yeremiapane/queue-app/models"
	"gorm.io/gorm"
)

// LogFilter narrows ListLogs. Zero values mean no filter; End is inclusive
// of the whole day it names.
type LogFilter struct {
	Action string
	Start  time.Time
	End    time.Time
	Page   int
	Limit  int
}

// ListLogs returns a page of override log entries, newest first.
func ListLogs(ctx context.Context, db *gorm.DB, f LogFilter) ([]models.OverrideLog, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}

	q := db.WithContext(ctx).Model(&models.OverrideLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if !f.Start.IsZero() {
		q = q.Where("timestamp >= ?", f.Start.UTC())
	}
	if !f.End.IsZero() {
		q = q.Where("timestamp < ?", f.End.AddDate(0, 0, 1).UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.OverrideLog
	err := q.Order("timestamp DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error
	return logs, total, err
}
