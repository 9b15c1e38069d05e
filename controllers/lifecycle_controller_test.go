package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// lifecycleRouter mounts every lifecycle action route behind a mocked auth
// context for the given user
func lifecycleRouter(auth0ID, role string) *gin.Engine {
	router := setupTestRouter()
	auth := mockAuthMiddleware(auth0ID, role, "token")
	router.POST("/orders/:id/approve", auth, ApproveOrder)
	router.POST("/orders/:id/reject", auth, RejectOrder)
	router.POST("/orders/:id/counter-offer", auth, SendCounterOffer)
	router.POST("/orders/:id/accept-counter-offer", auth, AcceptCounterOffer)
	router.POST("/orders/:id/confirm-price", auth, ConfirmPrice)
	router.POST("/orders/:id/confirm-payment", auth, ConfirmPayment)
	router.POST("/orders/:id/start-production", auth, StartProduction)
	router.POST("/orders/:id/complete", auth, CompleteOrder)
	router.POST("/orders/:id/assign-machine", auth, AssignMachine)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeResponse(t, w)
	require.False(t, response["success"].(bool))
	return response["error"].(map[string]interface{})["code"].(string)
}

func createTestMachine(t *testing.T, db *gorm.DB) *models.Machine {
	machine := &models.Machine{
		Name: "Amada HFE 100",
		Type: models.MachineTypeBending,
		Make: "Amada",
	}
	require.NoError(t, db.Create(machine).Error)
	return machine
}

func TestApproveOrderEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|lc-client")
	createTestAdmin(t, db, "auth0|lc-admin")

	t.Run("admin approves with an estimate", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|lc-admin", "admin")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/approve", gin.H{
			"price_estimate": 800.0,
			"admin_notes":    "standard tooling",
		})

		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		response := decodeResponse(t, w)
		assert.True(t, response["success"].(bool))
		assert.Equal(t, "Order approved successfully", response["message"])
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "awaiting_payment", data["status"])
		assert.Equal(t, 800.0, data["price_estimate"])
		assert.Nil(t, data["agreed_price"])
	})

	t.Run("empty body is accepted", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|lc-admin", "admin")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/approve", nil)
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	})

	t.Run("client is forbidden", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|lc-client", "client")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/approve", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	})

	t.Run("invalid price estimate", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|lc-admin", "admin")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/approve", gin.H{
			"price_estimate": -100.0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("unknown order", func(t *testing.T) {
		router := lifecycleRouter("auth0|lc-admin", "admin")
		w := postJSON(t, router, "/orders/99999/approve", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ORDER_NOT_FOUND", errorCode(t, w))
	})
}

func TestRejectOrderEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|rj-client")
	createTestAdmin(t, db, "auth0|rj-admin")

	t.Run("reason required", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|rj-admin", "admin")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/reject", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_ARGUMENT", errorCode(t, w))
	})

	t.Run("rejects with a reason", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		router := lifecycleRouter("auth0|rj-admin", "admin")

		w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/reject", gin.H{
			"rejection_reason": "tolerance out of range",
		})
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "rejected", data["status"])
		assert.Equal(t, "tolerance out of range", data["rejection_reason"])
	})
}

func TestCounterOfferEndpoints(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|co-client")
	createTestAdmin(t, db, "auth0|co-admin")

	order := createTestOrder(t, db, client, models.StatusUnderReview)
	clientRouter := lifecycleRouter("auth0|co-client", "client")
	adminRouter := lifecycleRouter("auth0|co-admin", "admin")

	// Missing amount
	w := postJSON(t, clientRouter, "/orders/"+itoa(order.ID)+"/counter-offer", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_ARGUMENT", errorCode(t, w))

	// Client opens negotiation
	w = postJSON(t, clientRouter, "/orders/"+itoa(order.ID)+"/counter-offer", gin.H{"amount": 650.0})
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "negotiation", data["status"])

	// Admin counters back
	w = postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/counter-offer", gin.H{
		"amount":  700.0,
		"message": "meet in the middle",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin cannot accept on the client's behalf
	w = postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/accept-counter-offer", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	// Client accepts the latest offer
	w = postJSON(t, clientRouter, "/orders/"+itoa(order.ID)+"/accept-counter-offer", nil)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	response := decodeResponse(t, w)
	assert.Equal(t, "Counter offer accepted. Awaiting payment.", response["message"])
	data = response["data"].(map[string]interface{})
	assert.Equal(t, "awaiting_payment", data["status"])
	assert.Equal(t, 700.0, data["agreed_price"])

	// Nothing left to accept once out of negotiation
	w = postJSON(t, clientRouter, "/orders/"+itoa(order.ID)+"/accept-counter-offer", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", errorCode(t, w))
}

func TestAcceptCounterOffer_NoOffer(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|no-offer")
	order := createTestOrder(t, db, client, models.StatusNegotiation)

	router := lifecycleRouter("auth0|no-offer", "client")
	w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/accept-counter-offer", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_OFFER_TO_ACCEPT", errorCode(t, w))
}

func TestConfirmPriceEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|cp-client")

	order := createTestOrder(t, db, client, models.StatusUnderReview)
	require.NoError(t, db.Model(order).Update("price_estimate", 550.0).Error)

	router := lifecycleRouter("auth0|cp-client", "client")
	w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/confirm-price", nil)

	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, 550.0, data["agreed_price"])
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|pay-client")

	order := createTestOrder(t, db, client, models.StatusAwaitingPayment)
	require.NoError(t, db.Model(order).Update("agreed_price", 700.0).Error)

	router := lifecycleRouter("auth0|pay-client", "client")
	w := postJSON(t, router, "/orders/"+itoa(order.ID)+"/confirm-payment", nil)

	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	response := decodeResponse(t, w)
	assert.Equal(t, "Payment confirmed. Order accepted.", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "accepted", data["status"])
	assert.Equal(t, true, data["payment_confirmed"])
}

func TestStartProductionEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|sp-client")
	createTestAdmin(t, db, "auth0|sp-admin")
	adminRouter := lifecycleRouter("auth0|sp-admin", "admin")

	t.Run("fails without a machine", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusAccepted)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/start-production", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", errorCode(t, w))
	})

	t.Run("starts once a machine is assigned", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusAccepted)
		machine := createTestMachine(t, db)

		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/assign-machine", gin.H{
			"machine_id": machine.ID,
		})
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		w = postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/start-production", nil)
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "in_production", data["status"])
		assert.NotNil(t, data["date_production_started"])
	})
}

func TestCompleteOrderEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|done-client")
	createTestAdmin(t, db, "auth0|done-admin")
	adminRouter := lifecycleRouter("auth0|done-admin", "admin")

	t.Run("completes with actual cost", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusInProduction)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/complete", gin.H{
			"actual_cost": 640.0,
		})
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "completed", data["status"])
		assert.Equal(t, 640.0, data["actual_cost"])
	})

	t.Run("invalid from accepted", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusAccepted)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/complete", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", errorCode(t, w))
	})
}

func TestAssignMachineEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	client := createTestClient(t, db, "auth0|am-client")
	createTestAdmin(t, db, "auth0|am-admin")
	adminRouter := lifecycleRouter("auth0|am-admin", "admin")

	t.Run("missing machine id", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/assign-machine", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_ARGUMENT", errorCode(t, w))
	})

	t.Run("unknown machine", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusUnderReview)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/assign-machine", gin.H{
			"machine_id": 99999,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "MACHINE_NOT_FOUND", errorCode(t, w))
	})

	t.Run("assigns and preloads the machine", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusAwaitingPayment)
		machine := createTestMachine(t, db)

		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/assign-machine", gin.H{
			"machine_id": machine.ID,
		})
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(machine.ID), data["machine_id"])
		machineData := data["machine"].(map[string]interface{})
		assert.Equal(t, machine.Name, machineData["name"])
		// Assigning doesn't advance the lifecycle
		assert.Equal(t, "awaiting_payment", data["status"])
	})

	t.Run("terminal orders cannot be assigned", func(t *testing.T) {
		order := createTestOrder(t, db, client, models.StatusCompleted)
		machine := createTestMachine(t, db)
		w := postJSON(t, adminRouter, "/orders/"+itoa(order.ID)+"/assign-machine", gin.H{
			"machine_id": machine.ID,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", errorCode(t, w))
	})
}
