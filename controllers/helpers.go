package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/middleware"
	"github.com/parth-garg/fabworks-api/models"
	"github.com/parth-garg/fabworks-api/services"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// requireUser resolves the acting user from the validated JWT. It writes the
// error response itself and returns false when the token is unusable or the
// user has no profile yet.
func requireUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, false
	}

	return &user, true
}

// orderIDParam parses the :id URL parameter. An unparsable id cannot name an
// existing order, so it reports ORDER_NOT_FOUND.
func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return 0, false
	}
	return uint(id), true
}

// respondLifecycleError translates an engine failure into the error envelope
func respondLifecycleError(c *gin.Context, err error) {
	le := services.AsLifecycleError(err)
	respondError(c, le.HTTPStatus, le.Code, le.Message)
}

// attachDesignFileURLs fills the computed presigned-URL fields on an order
// payload. Skipped silently when file storage isn't configured.
func attachDesignFileURLs(order *models.Order) {
	svc := services.GetDesignFileService()
	if svc == nil || order == nil {
		return
	}

	if order.DraftFileS3Key != nil {
		if url, err := svc.GetDesignFileURL(*order.DraftFileS3Key); err == nil && url != "" {
			order.DraftFileURL = &url
		}
	}
	if order.StepFileS3Key != nil {
		if url, err := svc.GetDesignFileURL(*order.StepFileS3Key); err == nil && url != "" {
			order.StepFileURL = &url
		}
	}
}
