package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestMetrics(m))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(middleware.DefaultBodyLimit))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/metrics", gin.WrapH(m.Handler()))

	authHandler := handlers.NewAuthHandler(facade)
	productHandler := handlers.NewProductHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)
	api.GET("/products/:id", productHandler.Get)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	cart := authed.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.Add)
	cart.DELETE("/items/:productId", cartHandler.Remove)
	cart.POST("/merge", cartHandler.Merge)

	checkout := authed.Group("/checkout")
	checkout.GET("/token", checkoutHandler.Token)
	checkout.POST("/payment", checkoutHandler.Pay)

	authed.GET("/orders", orderHandler.List)

	adminGroup := authed.Group("/admin")
	adminGroup.Use(middleware.AdminRequired())
	adminGroup.GET("/orders", orderHandler.ListAll)
	adminGroup.PUT("/orders/:id/status", orderHandler.UpdateStatus)

	return engine
}
