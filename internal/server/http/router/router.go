package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/handlers"
	"github.com/polkiloo/digimarket/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketplaceFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(middleware.MaxDecompressedBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	accountHandler := handlers.NewAccountHandler(facade)
	offerHandler := handlers.NewOfferHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	auditHandler := handlers.NewAuditHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade), middleware.ActorRequired(facade))

	authed.DELETE("/user", accountHandler.DeleteSelf)

	offers := authed.Group("/offers")
	offers.POST("", offerHandler.Create)
	offers.GET("/:id", offerHandler.Get)
	offers.PATCH("/:id", offerHandler.Edit)
	offers.DELETE("/:id", offerHandler.Transition(model.ActionOfferDelete))
	offers.POST("/:id/activate", offerHandler.Transition(model.ActionOfferActivate))
	offers.POST("/:id/deactivate", offerHandler.Transition(model.ActionOfferDeactivate))
	offers.POST("/:id/archive", offerHandler.Transition(model.ActionOfferArchive))
	offers.POST("/:id/restock", offerHandler.Restock)

	orders := authed.Group("/orders")
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/cancel", orderHandler.Transition(model.ActionOrderCancel))
	orders.POST("/:id/ship", orderHandler.Transition(model.ActionOrderShip))
	orders.POST("/:id/deliver", orderHandler.Transition(model.ActionOrderDeliver))

	admin := authed.Group("/admin")
	admin.POST("/offers/:id/moderate", offerHandler.Transition(model.ActionOfferModerate))
	admin.POST("/offers/:id/unmoderate", offerHandler.Transition(model.ActionOfferUnmoderate))
	admin.POST("/users/:id/block", accountHandler.Block)
	admin.POST("/users/:id/unblock", accountHandler.Unblock)
	admin.GET("/audit", auditHandler.Recent)

	return engine
}
