package models

import "time"

const (
	ActionManualAssign  = "manual_assign"
	ActionManualReorder = "manual_reorder"
	ActionCancelToken   = "cancel_token"
	ActionCompleteToken = "complete_token"
	ActionAutoTimeout   = "auto_timeout"
)

// PerformerSystem marks entries written by sweeps rather than staff.
const PerformerSystem = "system"

// OverrideLog is append-only. Nothing in the code base updates or deletes it.
type OverrideLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"type:varchar(32);not null;index:idx_log_action_time" json:"action"`
	PerformedBy string    `gorm:"type:varchar(255);not null" json:"performed_by"`
	TokenID     *uint     `gorm:"index" json:"token_id,omitempty"`
	TableID     *uint     `json:"table_id,omitempty"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	Timestamp   time.Time `gorm:"not null;index;index:idx_log_action_time" json:"timestamp"`
}
