package models

import "time"

const (
	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
	TableStatusReserved = "reserved"
	TableStatusShared   = "shared"
)

type Table struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableNumber    int       `gorm:"uniqueIndex;not null" json:"table_number"`
	Capacity       int       `gorm:"not null;index:idx_table_status_capacity" json:"capacity"`
	Status         string    `gorm:"type:varchar(20);not null;default:'free';index:idx_table_status_capacity" json:"status"`
	CurrentTokenID *uint     `json:"current_token_id,omitempty"`
	IsJoinable     bool      `gorm:"not null;default:true" json:"is_joinable"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// ValidTableStatus reports whether s is one of the known table statuses.
func ValidTableStatus(s string) bool {
	switch s {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved, TableStatusShared:
		return true
	}
	return false
}
