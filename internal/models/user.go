package models

import "gorm.io/gorm"

// Roles a user account can hold. EMPLOYEE accounts manage the catalog and
// the order lifecycle, CLIENT accounts place orders and leave opinions.
const (
	RoleClient   = "CLIENT"
	RoleEmployee = "EMPLOYEE"
)

// User represents a registered account of the store.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=4,max=100"`
	Password string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash, never serialized
	Role     string `json:"role" gorm:"type:varchar(20)" validate:"omitempty,oneof=CLIENT EMPLOYEE"`
	// RefreshToken is the single live refresh token for this account.
	// Issuing a new one replaces it; logout clears it.
	RefreshToken string `json:"-" gorm:"type:varchar(512)"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
