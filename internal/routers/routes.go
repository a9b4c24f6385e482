package routers

import (
	"shay-b-io/api/internal/container"
	"shay-b-io/api/internal/middleware"
	"shay-b-io/api/pkg/controllers"

	"github.com/gin-gonic/gin"
)

// InitRoute creates the Gin router with the service layer wired in.
func InitRoute() *gin.Engine {
	serviceContainer := container.NewServiceContainer()
	router := gin.Default()
	router.Use(middleware.CorsMiddleware())

	api := router.Group("/v1", middleware.ShayRateLimiter())
	{
		api.GET("/ping", controllers.Ping)
		sellerRoutes(api, serviceContainer)
		checkoutRoutes(api, serviceContainer)
	}

	return router
}

// sellerRoutes configures the onboarding lifecycle endpoints
func sellerRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	sellers := api.Group("/sellers")

	sellers.POST("/:sellerid/onboard", sc.OnboardingController.CreateSellerAccount())
	sellers.GET("/:sellerid/status", sc.OnboardingController.GetSellerStatus())
	sellers.POST("/:sellerid/documents", sc.DocumentController.UploadIdentityDocument())
}

// checkoutRoutes configures payment session endpoints
func checkoutRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	api.POST("/checkout", sc.CheckoutController.CreateCheckoutSession())
}
