package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/freelance-catalog/internal/config"
	"github.com/ignatzorin/freelance-catalog/internal/http/handlers"
	"github.com/ignatzorin/freelance-catalog/internal/http/middleware"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

// SetupRouter собирает gin engine: общие middleware, служебные маршруты и ресурсы под /api.
// tokens может быть nil, тогда токены не проверяются.
func SetupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	tokens middleware.TokenParser,
	resources ...handlers.Registrar,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	alerts := response.NewAlerts(cfg.AppName)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.ErrorHandler(alerts))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, []string{
		response.TotalCountHeader,
		"Link",
		"Location",
		middleware.RequestIDHeader,
		alerts.AlertHeader(),
		alerts.ErrorHeader(),
		alerts.ParamsHeader(),
	}))

	r.NoRoute(func(c *gin.Context) { _ = c.Error(apperror.ErrRouteNotFound) })
	r.NoMethod(func(c *gin.Context) { _ = c.Error(apperror.ErrMethodNotAllowed) })

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	if tokens != nil {
		api.Use(middleware.AuthMiddleware(tokens, cfg.AuthEnabled))
	}

	for _, res := range resources {
		res.Register(api)
	}

	return r
}
