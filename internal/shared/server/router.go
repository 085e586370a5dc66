package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grantreview-backend/internal/bootstrap"
	"grantreview-backend/internal/shared/config"
	"grantreview-backend/internal/shared/metrics"
	"grantreview-backend/internal/shared/server/middleware"
	"grantreview-backend/internal/shared/server/respond"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	return NewRouterWithApp(app), nil
}

// NewRouterWithApp wires routes onto prebuilt dependencies.
func NewRouterWithApp(app *bootstrap.App) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(app.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	app.ReviewHandler.RegisterRoutes(api)

	r.GET("/metrics", metrics.Handler())

	app.Router = r
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
