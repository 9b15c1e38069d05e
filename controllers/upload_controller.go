package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/models"
	"github.com/parth-garg/fabworks-api/services"
	"github.com/parth-garg/fabworks-api/utils"
)

// Design file kinds accepted by the upload endpoint
const (
	designFileKindDraft = "draft"
	designFileKindStep  = "step"
)

// UploadDesignFile handles POST /api/v1/orders/:id/design-file - attaches a
// design file (2D draft drawing or STEP model) to an order. Multipart form
// with a "file" part and a "kind" field of "draft" or "step". Only the
// order's owner may upload, and only while the order is still under review
// or in negotiation.
func UploadDesignFile(c *gin.Context) {
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
	if err := db.First(&order, orderID).Error; err != nil {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}

	if !order.IsOwnedBy(user) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only the client who created the order can upload design files")
		return
	}

	// Design files are fixed once the order is priced
	if order.Status != models.StatusUnderReview && order.Status != models.StatusNegotiation {
		respondError(c, http.StatusBadRequest, "INVALID_STATE", "Design files cannot be changed at this stage")
		return
	}

	kind := c.PostForm("kind")
	if kind == "" {
		kind = designFileKindDraft
	}
	if kind != designFileKindDraft && kind != designFileKindStep {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "kind must be \"draft\" or \"step\"")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A file is required")
		return
	}

	svc := services.GetDesignFileService()
	if svc == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
		return
	}

	fileKey, err := svc.UploadDesignFile(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to store design file")
		return
	}

	column := "draft_file_s3_key"
	if kind == designFileKindStep {
		column = "step_file_s3_key"
	}
	if err := db.Model(&order).Update(column, fileKey).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record design file")
		return
	}

	if err := db.Preload("Client").Preload("Machine").First(&order, order.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order details")
		return
	}

	attachDesignFileURLs(&order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Design file uploaded successfully",
		"data":    order,
	})
}
