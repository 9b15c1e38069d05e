package models

import (
	"time"

	"gorm.io/gorm"
)

// Machine type values
const (
	MachineTypeLaser   = "laser"
	MachineTypeBending = "bending"
	MachineTypePunch   = "punch"
)

// Machine represents a production resource that can be assigned to an order
type Machine struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Type      string         `gorm:"not null;default:'laser'" json:"type"` // laser, bending, punch
	Make      string         `gorm:"not null" json:"make"`
	Capacity  string         `json:"capacity"`   // laser
	BedSize   string         `json:"bed_size"`   // laser, punch
	Tonnage   string         `json:"tonnage"`    // bending, punch
	BedLength string         `json:"bed_length"` // bending
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Machine model
func (Machine) TableName() string {
	return "machines"
}
