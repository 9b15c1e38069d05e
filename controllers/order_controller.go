package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/models"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ProductDescription string   `json:"product_description" binding:"required"`
	Quantity           int      `json:"quantity" binding:"required,gt=0"`
	MaterialThickness  string   `json:"material_thickness" binding:"required"`
	MaterialType       string   `json:"material_type" binding:"required"`
	MaterialGrade      string   `json:"material_grade" binding:"required"`
	SurfaceTreatment   string   `json:"surface_treatment" binding:"required"`
	PackingStandard    string   `json:"packing_standard" binding:"required"`
	TargetPrice        *float64 `json:"target_price" binding:"omitempty,gt=0"`
}

// newPartID generates the human-facing part identifier assigned once at
// creation, e.g. PART-3F2A91BC.
func newPartID() string {
	return fmt.Sprintf("PART-%s", strings.ToUpper(uuid.NewString()[:8]))
}

// CreateOrder handles POST /api/v1/orders - creates a new order (clients only)
func CreateOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	// Only clients can submit orders
	if user.Role != models.RoleClient {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only clients can create orders")
		return
	}

	// Parse request body
	var req CreateOrderRequest
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

	// Create the order
	order := models.Order{
		PartID:             newPartID(),
		ProductDescription: req.ProductDescription,
		Quantity:           req.Quantity,
		MaterialThickness:  req.MaterialThickness,
		MaterialType:       req.MaterialType,
		MaterialGrade:      req.MaterialGrade,
		SurfaceTreatment:   req.SurfaceTreatment,
		PackingStandard:    req.PackingStandard,
		TargetPrice:        req.TargetPrice,
		Status:             models.StatusUnderReview,
		ClientID:           user.ID,
		DateSubmitted:      time.Now(),
	}

	db := config.GetDB()
	if err := db.Create(&order).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order")
		return
	}

	// Load the client relationship to return complete data
	if err := db.Preload("Client").First(&order, order.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order details")
		return
	}

	attachDesignFileURLs(&order)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - admins see every order, clients
// only their own. Newest submissions first.
func ListOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Client").Preload("Machine").Order("date_submitted DESC")
	if !user.IsAdmin() {
		query = query.Where("client_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch orders")
		return
	}

	for i := range orders {
		attachDesignFileURLs(&orders[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - admin or the order's owner
func GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Client").Preload("Machine").First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	if !user.IsAdmin() && !order.IsOwnedBy(user) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return
	}

	attachDesignFileURLs(&order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
