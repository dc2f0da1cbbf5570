package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/api/handler"
	"github.com/davidblanco1407/pma-frequency-backend/internal/api/middleware"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// Deps are the collaborators the router wires into middleware.
type Deps struct {
	Config  *config.Config
	Handler *handler.Handler
	JWT     *jwt.Manager
	// Revoked and Limiter may be nil when Redis is not configured.
	Revoked  middleware.RevocationChecker
	Limiter  middleware.RateLimiter
	// Accounts re-reads privileges per request; nil trusts the token.
	Accounts middleware.AccountLookup
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Setup builds the gin engine.
func Setup(d Deps) *gin.Engine {
	cfg, h := d.Config, d.Handler

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, 40400, "route not found")
	})

	r.GET("/health", h.Health.Check)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authLimit := middleware.RateLimit(d.Limiter, cfg.Security.AuthRateLimit, cfg.Security.AuthRateWindow, d.Metrics, d.Logger)
	requireAuth := middleware.JWTAuth(d.JWT, d.Revoked, d.Accounts, d.Logger)
	staff := middleware.RequireStaff()

	v1 := r.Group("/api/v1")
	{
		// ── auth (public) ──
		auth := v1.Group("/auth")
		{
			auth.POST("/token", authLimit, h.Auth.Login)
			auth.POST("/token/refresh", h.Auth.Refresh)
			auth.POST("/password-reset", authLimit, h.Auth.RequestPasswordReset)
			auth.POST("/password-reset/confirm", authLimit, h.Auth.ConfirmPasswordReset)
		}

		authorized := v1.Group("")
		authorized.Use(requireAuth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// ── members ──
			members := authorized.Group("/members")
			{
				members.GET("", h.Member.List)
				members.GET("/search", h.Member.List)
				members.GET("/me", h.Member.Me)
				members.GET("/stats", staff, h.Member.Stats)
				members.GET("/export", staff, h.Export.ExportMembers)
				members.POST("", staff, h.Member.Create)
				members.POST("/bulk-status", staff, h.Member.BulkStatus)
				members.GET("/:id", h.Member.Get)
				members.PUT("/:id", h.Member.Update) // owner or staff, checked in the service
				members.DELETE("/:id", h.Member.Delete)
				members.GET("/:id/sanctions", staff, h.Sanction.ListByMember)
			}

			// ── sanctions ──
			sanctions := authorized.Group("/sanctions", staff)
			{
				sanctions.GET("", h.Sanction.List)
				sanctions.POST("", h.Sanction.Create)
				sanctions.GET("/:id", h.Sanction.Get)
				sanctions.PUT("/:id", h.Sanction.Update)
			}

			// ── correction requests ──
			corrections := authorized.Group("/corrections")
			{
				corrections.GET("", h.Correction.List)
				corrections.POST("", h.Correction.Create)
				corrections.GET("/:id", h.Correction.Get)
				corrections.PUT("/:id", staff, h.Correction.Update)
			}

			// ── accounts ──
			authorized.PUT("/accounts/:id/privileges", middleware.RequireSuperuser(), h.Account.UpdatePrivileges)
		}
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	return r
}
