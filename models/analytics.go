package models

import "time"

// Analytics holds one row per (date, hour). Date is midnight of the day.
type Analytics struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Date              time.Time `gorm:"not null;uniqueIndex:idx_analytics_date_hour" json:"date"`
	Hour              int       `gorm:"not null;uniqueIndex:idx_analytics_date_hour" json:"hour"`
	TokenCount        int       `gorm:"not null;default:0" json:"token_count"`
	PeakHour          bool      `gorm:"not null;default:false" json:"peak_hour"`
	AvgWaitTime       float64   `gorm:"not null;default:0" json:"avg_wait_time"`
	ShareConsentCount int       `gorm:"not null;default:0" json:"share_consent_count"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
