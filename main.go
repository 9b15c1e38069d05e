package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/parth-garg/fabworks-api/config"
	"github.com/parth-garg/fabworks-api/controllers"
	"github.com/parth-garg/fabworks-api/middleware"
	"github.com/parth-garg/fabworks-api/models"
	"github.com/parth-garg/fabworks-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Fabworks API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Machine{}, &models.Order{}, &models.OrderMessage{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize design file storage when a bucket is configured
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitDesignFileService(s3Service)
		log.Printf("Design file storage ready (bucket %s)", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, design file uploads disabled")
	}

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the router with all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS for the frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Everything else requires a valid token
		authorized := v1.Group("")
		authorized.Use(middleware.EnsureValidToken(cfg))
		{
			// User profiles
			authorized.POST("/users", controllers.CreateUser)
			authorized.GET("/users/me", controllers.GetMyProfile)
			authorized.PUT("/users/me", controllers.UpdateMyProfile)

			// Machine catalog
			authorized.GET("/machines", controllers.ListMachines)
			authorized.POST("/machines", controllers.CreateMachine)

			// Orders
			authorized.POST("/orders", controllers.CreateOrder)
			authorized.GET("/orders", controllers.ListOrders)
			authorized.GET("/orders/:id", controllers.GetOrder)
			authorized.POST("/orders/:id/design-file", controllers.UploadDesignFile)

			// Order lifecycle actions
			authorized.POST("/orders/:id/approve", controllers.ApproveOrder)
			authorized.POST("/orders/:id/reject", controllers.RejectOrder)
			authorized.POST("/orders/:id/counter-offer", controllers.SendCounterOffer)
			authorized.POST("/orders/:id/accept-counter-offer", controllers.AcceptCounterOffer)
			authorized.POST("/orders/:id/confirm-price", controllers.ConfirmPrice)
			authorized.POST("/orders/:id/confirm-payment", controllers.ConfirmPayment)
			authorized.POST("/orders/:id/start-production", controllers.StartProduction)
			authorized.POST("/orders/:id/complete", controllers.CompleteOrder)
			authorized.POST("/orders/:id/assign-machine", controllers.AssignMachine)

			// Negotiation log
			authorized.GET("/orders/:id/messages", controllers.ListMessages)
			authorized.POST("/orders/:id/messages", controllers.SendMessage)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fabworks API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
