// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/handlers"
	"github.com/shopdesk/backend/internal/middleware"
	"github.com/shopdesk/backend/internal/services"
	"github.com/shopdesk/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	alertService := services.NewAlertService(db, notificationService, cfg)
	extractor := services.NewOrderExtractor(cfg)

	authService := services.NewAuthService(db, cfg)
	catalogService := services.NewCatalogService(db, alertService)
	customerService := services.NewCustomerService(db)
	orderService := services.NewOrderService(db, customerService, notificationService)
	callService := services.NewCallService(db, extractor, orderService, notificationService, cfg)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	inventoryHandler := handlers.NewInventoryHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	callHandler := handlers.NewCallHandler(callService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.PUT("/profile", middleware.AuthRequired(), authHandler.UpdateProfile)
			auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		// Everything below is owner-scoped
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Inventory routes
			inventory := protected.Group("/inventory")
			{
				inventory.GET("", inventoryHandler.ListProducts)
				inventory.POST("", inventoryHandler.AddProduct)
				inventory.GET("/:id", inventoryHandler.GetProduct)
				inventory.PUT("/:id", inventoryHandler.UpdateProduct)
				inventory.DELETE("/:id", inventoryHandler.DeleteProduct)
			}

			// Order routes
			orders := protected.Group("/orders")
			{
				orders.GET("", orderHandler.ListOrders)
				orders.POST("", orderHandler.CreateOrder)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.PUT("/:id/status", orderHandler.UpdateStatus)
				orders.PUT("/:id/notes", orderHandler.UpdateNotes)
			}

			// Customer routes
			customers := protected.Group("/customers")
			{
				customers.GET("", customerHandler.ListCustomers)
				customers.POST("", customerHandler.CreateCustomer)
				customers.GET("/find", customerHandler.FindByPhone)
				customers.GET("/:id", customerHandler.GetCustomer)
			}

			// Call intake routes
			calls := protected.Group("/calls")
			{
				calls.GET("", callHandler.ListCalls)
				calls.POST("/process", middleware.CallRateLimit(), callHandler.ProcessCall)
				calls.GET("/:id", callHandler.GetCall)
				calls.POST("/:id/convert", callHandler.ConvertCall)
			}

			// Dashboard routes
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Notification feed routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.ListNotifications)
				notifications.PUT("/:id/read", notificationHandler.MarkRead)
			}
		}
	}

	return r
}
