package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/itfarmkart/CRM-rsolar-backend/docs"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/app/controllers"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/app/middleware"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/domain/services/container"
	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
)

// SetupRouter initializes the engine with middleware, swagger and routes
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	r.Use(middleware.RequestID())

	serviceContainer := container.NewServiceContainer(db, cfg)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes configures all API routes
func registerRoutes(r *gin.Engine, container *container.ServiceContainer) {
	api := r.Group("/api")
	api.Use(middleware.IPRateLimiter(10, 20))

	// Health
	healthController := controllers.NewHealthCheckController(container)
	api.GET("/ping", healthController.Ping)
	api.GET("/health", healthController.Ping)
	api.GET("/health/status", healthController.Status)

	// Customers
	customerGroup := api.Group("/customers")
	customerGroup.GET("", middleware.Cache(time.Minute), controllers.HandleCustomerFunc(container, "getCustomers"))
	customerGroup.GET("/districts", middleware.Cache(10*time.Minute), controllers.HandleCustomerFunc(container, "getDistricts"))
	customerGroup.GET("/zoho-inventory", middleware.PathRateLimiter(1, 2), controllers.HandleCustomerFunc(container, "getZohoInventory"))
	customerGroup.GET("/verify-s3", controllers.HandleCustomerFunc(container, "verifyS3Object"))
	customerGroup.GET("/:identifier", controllers.HandleCustomerFunc(container, "getByIdentifier"))
	customerGroup.GET("/:identifier/bill", controllers.HandleCustomerFunc(container, "getCustomerBill"))

	// Complaints
	complaintGroup := api.Group("/complaints")
	complaintGroup.GET("", controllers.HandleComplaintFunc(container, "getComplaints"))
	complaintGroup.GET("/categories", middleware.Cache(10*time.Minute), controllers.HandleComplaintFunc(container, "getCategories"))
	complaintGroup.GET("/departments", middleware.Cache(10*time.Minute), controllers.HandleComplaintFunc(container, "getDepartments"))

	// Allowed emails
	api.GET("/emails", controllers.HandleCustomerFunc(container, "getAllowedEmails"))

	// O&M dashboard, rate limited per path to protect the vendor quota
	omGroup := api.Group("/om")
	omGroup.Use(middleware.PathRateLimiter(5, 10))
	omGroup.GET("/summary", middleware.Cache(time.Minute), controllers.HandleOMPlatformFunc(container, "getSummary"))
	omGroup.GET("/devices", controllers.HandleOMPlatformFunc(container, "getDevices"))
	omGroup.GET("/sites/:siteId", controllers.HandleOMPlatformFunc(container, "getSiteDetail"))
}
