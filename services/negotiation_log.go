package services

import (
	"errors"

	"github.com/parth-garg/fabworks-api/models"
	"gorm.io/gorm"
)

// The negotiation log is the append-only message sequence attached to one
// order. Entries are never updated or deleted; listing is ascending by
// creation time, and the "latest counter offer" query ties equal timestamps
// by insertion order (highest id wins).

// AppendOrderMessage inserts a new entry into an order's negotiation log.
// db may be a transaction so the entry commits atomically with a lifecycle
// transition.
func AppendOrderMessage(db *gorm.DB, msg *models.OrderMessage) error {
	return db.Create(msg).Error
}

// OrderMessages returns the full negotiation log for an order, oldest first.
func OrderMessages(db *gorm.DB, orderID uint) ([]models.OrderMessage, error) {
	var messages []models.OrderMessage
	err := db.Where("order_id = ?", orderID).
		Preload("Sender").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// LatestCounterOffer returns the most recent counter_offer entry for an
// order, or nil when none exists.
func LatestCounterOffer(db *gorm.DB, orderID uint) (*models.OrderMessage, error) {
	var offer models.OrderMessage
	err := db.Where("order_id = ? AND type = ?", orderID, models.MessageTypeCounterOffer).
		Order("created_at DESC, id DESC").
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}
