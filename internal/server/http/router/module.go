package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(Setup),
	fx.Invoke(logRoutes),
)

func logRoutes(engine *gin.Engine, logger *slog.Logger) {
	routes := engine.Routes()
	for _, r := range routes {
		logger.Debug("route registered", slog.String("method", r.Method), slog.String("path", r.Path))
	}
	logger.Info("http routes ready", slog.Int("count", len(routes)))
}
