package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonneaffaire/internal/config"
	"bonneaffaire/internal/services"
)

// Services groups what the data routes need. A nil *Services means the
// server runs without a database.
type Services struct {
	Products services.ProductService
	Orders   services.OrderService
	Users    services.UserService
	Settings services.SettingsService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc *Services, logger *zap.Logger) *gin.Engine {
	production := cfg.IsProduction()
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(customRecovery(logger, production))
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware(cfg.FrontendURL))

	connected := svc != nil
	apiHandler := NewAPIHandler(cfg.Environment, connected)

	api := router.Group("/api")
	api.GET("", apiHandler.Info)
	api.GET("/test", apiHandler.Test)

	if connected {
		productHandler := NewProductHandler(svc.Products, logger, production)
		orderHandler := NewOrderHandler(svc.Orders, logger, production)
		settingsHandler := NewSettingsHandler(svc.Settings, logger, production)

		api.GET("/products", productHandler.ListProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.POST("/products/:id/cart", productHandler.AddToCart)

		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders/:orderNumber", orderHandler.GetOrder)

		admin := api.Group("/admin")
		admin.Use(adminAuth(svc.Users, logger))
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.PATCH("/products/:id/stock", productHandler.AdjustStock)
			admin.DELETE("/products/:id", productHandler.DeactivateProduct)

			admin.GET("/orders", orderHandler.ListOrders)
			admin.GET("/orders/:id", orderHandler.AdminGetOrder)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			admin.POST("/orders/:id/pay", orderHandler.MarkAsPaid)
			admin.POST("/orders/:id/tracking", orderHandler.AddTracking)
			admin.POST("/orders/:id/deliver", orderHandler.MarkAsDelivered)

			admin.GET("/settings", settingsHandler.ListSettings)
			admin.PUT("/settings/:name", settingsHandler.SetSetting)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if !connected && isDataRoute(path) {
			respondFailure(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		if strings.HasPrefix(path, "/api") {
			apiHandler.NotFound(c)
			return
		}
		respondFailure(c, http.StatusNotFound, "route not found")
	})

	return router
}

// isDataRoute reports whether path belongs to a route backed by the database.
func isDataRoute(path string) bool {
	for _, prefix := range []string{"/api/products", "/api/orders", "/api/admin"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
