package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/models"
)

// CreateMachineRequest represents the request body for registering a machine
type CreateMachineRequest struct {
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=laser bending punch"`
	Make      string `json:"make" binding:"required"`
	Capacity  string `json:"capacity"`
	BedSize   string `json:"bed_size"`
	Tonnage   string `json:"tonnage"`
	BedLength string `json:"bed_length"`
}

// ListMachines handles GET /api/v1/machines - lists the machine catalog
func ListMachines(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	db := config.GetDB()
	var machines []models.Machine
	if err := db.Order("name ASC").Find(&machines).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch machines")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    machines,
	})
}

// CreateMachine handles POST /api/v1/machines - registers a machine (admins only)
func CreateMachine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if !user.IsAdmin() {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
		return
	}

	var req CreateMachineRequest
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

	machine := models.Machine{
		Name:      req.Name,
		Type:      req.Type,
		Make:      req.Make,
		Capacity:  req.Capacity,
		BedSize:   req.BedSize,
		Tonnage:   req.Tonnage,
		BedLength: req.BedLength,
	}

	db := config.GetDB()
	if err := db.Create(&machine).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create machine")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    machine,
	})
}
