package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/services"
)

// Handlers for the order lifecycle actions. Each one is a thin layer over
// the lifecycle engine: resolve the actor, bind the inputs, run the
// operation, translate the result into the response envelope. All capability
// and state validation lives in the engine.

// ApproveOrderRequest represents the request body for approving an order
type ApproveOrderRequest struct {
	PriceEstimate          *float64   `json:"price_estimate" binding:"omitempty,gt=0"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
	MachineID              *uint      `json:"machine_id"`
	AdminNotes             string     `json:"admin_notes"`
}

// RejectOrderRequest represents the request body for rejecting an order
type RejectOrderRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// CounterOfferRequest represents the request body for sending a counter offer
type CounterOfferRequest struct {
	Amount  *float64 `json:"amount" binding:"omitempty,gt=0"`
	Message string   `json:"message"`
}

// CompleteOrderRequest represents the request body for completing an order
type CompleteOrderRequest struct {
	ActualCost *float64 `json:"actual_cost" binding:"omitempty,gt=0"`
}

// AssignMachineRequest represents the request body for assigning a machine
type AssignMachineRequest struct {
	MachineID *uint `json:"machine_id"`
}

// bindOptionalJSON binds the request body, tolerating an absent body for
// actions whose fields are all optional.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

func lifecycleEngine() *services.LifecycleService {
	return services.NewLifecycleService(config.GetDB())
}

// ApproveOrder handles POST /api/v1/orders/:id/approve - admin approves an
// order, optionally pricing it, scheduling it and assigning a machine
func ApproveOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req ApproveOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := lifecycleEngine().ApproveOrder(user, orderID, services.ApproveOrderInput{
		PriceEstimate:          req.PriceEstimate,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
		MachineID:              req.MachineID,
		AdminNotes:             req.AdminNotes,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order approved successfully",
		"data":    order,
	})
}

// RejectOrder handles POST /api/v1/orders/:id/reject - admin rejects an
// order with a reason
func RejectOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req RejectOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := lifecycleEngine().RejectOrder(user, orderID, req.RejectionReason)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order rejected successfully",
		"data":    order,
	})
}

// SendCounterOffer handles POST /api/v1/orders/:id/counter-offer - either
// party proposes a price during review or negotiation
func SendCounterOffer(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req CounterOfferRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := lifecycleEngine().SendCounterOffer(user, orderID, req.Amount, req.Message)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Counter offer sent",
		"data":    order,
	})
}

// AcceptCounterOffer handles POST /api/v1/orders/:id/accept-counter-offer -
// the order's owner accepts the latest counter offer
func AcceptCounterOffer(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := lifecycleEngine().AcceptCounterOffer(user, orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Counter offer accepted. Awaiting payment.",
		"data":    order,
	})
}

// ConfirmPrice handles POST /api/v1/orders/:id/confirm-price - the order's
// owner confirms the quoted price and accepts the order
func ConfirmPrice(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := lifecycleEngine().ConfirmPrice(user, orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order confirmed at price",
		"data":    order,
	})
}

// ConfirmPayment handles POST /api/v1/orders/:id/confirm-payment - the
// order's owner confirms payment after agreement
func ConfirmPayment(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := lifecycleEngine().ConfirmPayment(user, orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment confirmed. Order accepted.",
		"data":    order,
	})
}

// StartProduction handles POST /api/v1/orders/:id/start-production - admin
// moves an accepted, machine-assigned order into production
func StartProduction(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := lifecycleEngine().StartProduction(user, orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Production started successfully",
		"data":    order,
	})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete - admin marks an
// in-production order as completed
func CompleteOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req CompleteOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := lifecycleEngine().CompleteOrder(user, orderID, req.ActualCost)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order completed successfully",
		"data":    order,
	})
}

// AssignMachine handles POST /api/v1/orders/:id/assign-machine - admin
// assigns a machine to a non-terminal order
func AssignMachine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req AssignMachineRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, err := lifecycleEngine().AssignMachine(user, orderID, req.MachineID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	attachDesignFileURLs(order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Machine assigned successfully",
		"data":    order,
	})
}
