package models

import "time"

const (
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RoleDeveloper || r == RoleAdmin || r == RoleStaff
}

// IsAdminRole treats developers as admins.
func IsAdminRole(r string) bool {
	return r == RoleAdmin || r == RoleDeveloper
}
