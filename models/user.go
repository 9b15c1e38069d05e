package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system (client or admin)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string         `json:"phone"`
	Company   string         `json:"company"`
	Address   string         `json:"address"`
	Role      string         `gorm:"not null;default:'client'" json:"role"` // "client" or "admin"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the admin capability
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Role values for User.Role
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)
