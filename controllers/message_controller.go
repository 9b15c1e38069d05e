package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/models"
	"github.com/parth-garg/fabworks-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// canAccessOrderLog checks whether the user may read or write an order's
// negotiation log: admins on any order, clients only on their own.
func canAccessOrderLog(user *models.User, order *models.Order) bool {
	return user.IsAdmin() || order.IsOwnedBy(user)
}

// SendMessage handles POST /api/v1/orders/:id/messages - appends a plain
// message to the order's negotiation log
func SendMessage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	// Fetch the order
	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	if !canAccessOrderLog(user, &order) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to message on this order")
		return
	}

	// Parse request body
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// Append to the log, snapshotting the sender's role
	message := models.OrderMessage{
		OrderID:  order.ID,
		SenderID: user.ID,
		Message:  req.Message,
		Type:     models.MessageTypeMessage,
		IsAdmin:  user.IsAdmin(),
	}

	if err := services.AppendOrderMessage(db, &message); err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create message")
		return
	}

	// Load the sender relationship to return complete data
	if err := db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load message details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/orders/:id/messages - returns the order's
// full negotiation log, oldest first
func ListMessages(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	// Fetch the order
	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	if !canAccessOrderLog(user, &order) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view messages on this order")
		return
	}

	messages, err := services.OrderMessages(db, order.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
