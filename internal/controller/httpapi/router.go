// Package httpapi implements routing paths. Each services in own file.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/signage-toolkit/gateway/config"
	v1 "github.com/signage-toolkit/gateway/internal/controller/httpapi/v1"
	"github.com/signage-toolkit/gateway/internal/usecase"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, t usecase.Usecases, auth *v1.Auth, cfg *config.Config) {
	// Options
	handler.Use(gin.Logger())
	handler.Use(gin.Recovery())

	// Add Prometheus middleware for automatic HTTP metrics
	// Don't automatically register /metrics endpoint - we have our own
	p := ginprometheus.NewPrometheus("gin")
	p.MetricsPath = ""
	handler.Use(p.HandlerFunc())

	// K8s probe
	handler.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Prometheus metrics
	handler.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// version info
	handler.GET("/version", v1.NewVersionRoute(cfg.Version, cfg.ProcessID))

	// Public routes
	public := handler.Group("/api/v1")
	{
		v1.NewPairingRoutes(public, cfg.Pairing.ClaimURLBase, cfg.Pairing.CodeLength, l)
	}

	// Protected routes using the controller auth middleware
	protected := handler.Group("/api/v1", auth.Middleware())
	{
		v1.NewSessionRoutes(protected, t.Pairing, l)
	}

	admin := protected.Group("/admin", auth.RequireAdmin())
	{
		v1.NewAdminRoutes(admin, t.Pairing, l)
	}
}
