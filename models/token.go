package models

import "time"

const (
	TokenTypeWalkIn      = "walkin"
	TokenTypeReservation = "reservation"
)

const (
	TokenStatusWaiting   = "waiting"
	TokenStatusSeated    = "seated"
	TokenStatusCancelled = "cancelled"
	TokenStatusCompleted = "completed"
)

// Token is one party in the queue. AssignedTableID points at the primary
// table only; joined tables all carry this token in CurrentTokenID.
type Token struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TokenNumber       string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"token_number"`
	CustomerName      string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	PhoneNumber       string     `gorm:"type:varchar(50);not null" json:"phone_number"`
	PartySize         int        `gorm:"not null" json:"party_size"`
	Type              string     `gorm:"type:varchar(20);not null;default:'walkin';index:idx_token_status_type" json:"type"`
	Status            string     `gorm:"type:varchar(20);not null;default:'waiting';index:idx_token_status_position;index:idx_token_status_type" json:"status"`
	ReservationTime   *time.Time `json:"reservation_time,omitempty"`
	ArrivalTime       time.Time  `gorm:"not null" json:"arrival_time"`
	SeatedTime        *time.Time `json:"seated_time,omitempty"`
	EstimatedWaitTime int        `gorm:"not null;default:0" json:"estimated_wait_time"`
	QueuePosition     int        `gorm:"not null;default:0;index:idx_token_status_position" json:"queue_position"`
	AssignedTableID   *uint      `gorm:"index" json:"assigned_table_id,omitempty"`
	ShareConsent      bool       `gorm:"not null;default:false" json:"share_consent"`
	CreatedAt         time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the token can no longer change status.
func (t *Token) IsTerminal() bool {
	return t.Status == TokenStatusCompleted || t.Status == TokenStatusCancelled
}
