package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/queue-app/models"
	"gorm.io/gorm"
)

// SettingsService reads and updates the settings singleton.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the settings row, creating it with defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Order("id ASC").Take(&settings).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		settings = models.DefaultSettings()
		return tx.Create(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SettingsPatch carries the editable settings. Nil means unchanged.
type SettingsPatch struct {
	GracePeriodMinutes *int
	AvgSeatTimeMinutes *int
	AutoRefresh        *bool
	OpenTime           *string
	CloseTime          *string
}

// Update validates and applies p to the singleton.
func (s *SettingsService) Update(ctx context.Context, p SettingsPatch) (*models.Settings, error) {
	v := &ValidationError{}
	updates := map[string]interface{}{}
	if p.GracePeriodMinutes != nil {
		if *p.GracePeriodMinutes < 0 {
			v.add("grace period cannot be negative")
		} else {
			updates["grace_period_minutes"] = *p.GracePeriodMinutes
		}
	}
	if p.AvgSeatTimeMinutes != nil {
		if *p.AvgSeatTimeMinutes < 1 {
			v.add("average seat time must be at least 1 minute")
		} else {
			updates["avg_seat_time_minutes"] = *p.AvgSeatTimeMinutes
		}
	}
	if p.AutoRefresh != nil {
		updates["auto_refresh"] = *p.AutoRefresh
	}
	if p.OpenTime != nil {
		if !validClock(*p.OpenTime) {
			v.add("open time must be HH:MM")
		} else {
			updates["open_time"] = *p.OpenTime
		}
	}
	if p.CloseTime != nil {
		if !validClock(*p.CloseTime) {
			v.add("close time must be HH:MM")
		} else {
			updates["close_time"] = *p.CloseTime
		}
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx)
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}
