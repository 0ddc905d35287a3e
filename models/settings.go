package models

import "time"

const (
	DefaultGracePeriodMinutes = 15
	DefaultAvgSeatTimeMinutes = 45
	DefaultOpeningTime        = "09:00"
	DefaultClosingTime        = "22:00"
)

// Settings is a singleton row. Operating hours are informational only.
type Settings struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	GracePeriodMinutes int       `gorm:"not null;default:15" json:"grace_period_minutes"`
	AutoRefresh        bool      `gorm:"not null;default:true" json:"auto_refresh"`
	OpenTime           string    `gorm:"type:varchar(5);not null;default:'09:00'" json:"open_time"`
	CloseTime          string    `gorm:"type:varchar(5);not null;default:'22:00'" json:"close_time"`
	AvgSeatTimeMinutes int       `gorm:"not null;default:45" json:"avg_seat_time_minutes"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func DefaultSettings() Settings {
	return Settings{
		GracePeriodMinutes: DefaultGracePeriodMinutes,
		AutoRefresh:        true,
		OpenTime:           DefaultOpeningTime,
		CloseTime:          DefaultClosingTime,
		AvgSeatTimeMinutes: DefaultAvgSeatTimeMinutes,
	}
}
