package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"report-service/internal/auth"
	"report-service/internal/http/middleware"
)

func NewRouter(handler *Handler, parser *auth.Parser, limiter *middleware.RateLimiter, allowedOrigins []string, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/healthz", handler.healthz)

	public := router.Group("/api/v1")
	{
		public.GET("/contact", handler.contact)
		public.POST("/reports", limiter.Limit(), handler.submitReport)
		public.GET("/reports/status", limiter.Limit(), handler.lookupStatus)
		public.GET("/reports/status/:ticket", limiter.Limit(), handler.lookupStatus)
		public.POST("/auth/login", limiter.Limit(), handler.login)
	}

	router.GET("/api/v1/admin/dashboard/live", middleware.QueryAuth(parser), handler.liveDashboard)

	protected := router.Group("/api/v1/admin")
	protected.Use(middleware.Auth(parser))
	{
		protected.GET("/me", handler.me)

		protected.GET("/reports", handler.listReports)
		protected.GET("/reports/export", handler.exportReports)
		protected.GET("/reports/:id", handler.getReport)
		protected.PUT("/reports/:id/status", handler.updateReportStatus)
		protected.PUT("/reports/:id/assignment", handler.updateReportAssignment)

		protected.GET("/dashboard", handler.dashboard)

		protected.GET("/settings", handler.getSettings)
		protected.PUT("/settings", middleware.RequireAdmin(), handler.updateSettings)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Type", "Content-Disposition", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
