package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderMessage type values
const (
	MessageTypeMessage      = "message"
	MessageTypeCounterOffer = "counter_offer"
	MessageTypeSystem       = "system"
)

// OrderMessage represents one communication event in an order's negotiation
// log. Messages are append-only: never edited or deleted, ordered by creation
// time ascending.
type OrderMessage struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	OrderID  uint     `gorm:"not null;index" json:"order_id"`
	Order    Order    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"` // don't include full order in JSON
	SenderID uint     `gorm:"not null;index" json:"sender_id"`
	Sender   User     `gorm:"foreignKey:SenderID" json:"sender"`
	Message  string   `gorm:"type:text;not null" json:"message"`
	Type     string   `gorm:"not null;default:'message'" json:"type"` // message, counter_offer, system
	Amount   *float64 `json:"amount"`                                 // set on counter offers
	// IsAdmin is the sender's role snapshotted at write time, so the log
	// reflects who the sender was when the message was sent even if their
	// role changes later.
	IsAdmin   bool           `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderMessage model
func (OrderMessage) TableName() string {
	return "order_messages"
}
