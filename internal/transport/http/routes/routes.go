package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/redis"
	"github.com/Deaglesso/Second/internal/transport/http/handlers"
	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Products *usecase.ProductService
	Chats    *usecase.ChatService
	Reports  *usecase.ReportService
	Admin    *usecase.AdminService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    *pgxpool.Pool
	Cache       *redis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	healthHandler := handlers.NewHealthHandler(deps.Database, deps.Cache)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authGroup := api.Group("/auth")
		authHandler.RegisterRoutes(authGroup, buildAuthLimits(deps))

		meGroup := api.Group("/users/me")
		meGroup.Use(authMiddleware)
		authHandler.RegisterProtectedRoutes(meGroup)

		productHandler := handlers.NewProductHandler(deps.Services.Products)
		productHandler.RegisterPublicRoutes(api.Group("/products"))

		sellerGroup := api.Group("/products")
		sellerGroup.Use(authMiddleware)
		productHandler.RegisterProtectedRoutes(sellerGroup)
		productHandler.RegisterMineRoutes(meGroup)

		chatHandler := handlers.NewChatHandler(deps.Services.Chats)
		chatGroup := api.Group("/chats")
		chatGroup.Use(authMiddleware)
		chatHandler.RegisterRoutes(chatGroup)

		reportHandler := handlers.NewReportHandler(deps.Services.Reports)
		reportGroup := api.Group("/reports")
		reportGroup.Use(authMiddleware)
		reportHandler.RegisterRoutes(reportGroup)

		adminGroup := api.Group("/admin")
		adminGroup.Use(authMiddleware, adminOnly)
		reportHandler.RegisterAdminRoutes(adminGroup)

		adminHandler := handlers.NewAdminHandler(deps.Services.Admin)
		adminHandler.RegisterRoutes(adminGroup)
	}

	handlers.RegisterSwagger(r)

	return r
}

func buildAuthLimits(deps Dependencies) handlers.AuthRouteLimits {
	if deps.RateLimiter == nil || deps.Config == nil {
		return handlers.AuthRouteLimits{}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	build := func(name string, limit int) []gin.HandlerFunc {
		if limit <= 0 {
			return nil
		}
		rule := middleware.RateLimitRule{
			Name:       name,
			Limit:      limit,
			Window:     window,
			Identifier: middleware.ClientIPIdentifier(),
		}
		return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
	}

	return handlers.AuthRouteLimits{
		Register:      build("auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
		Login:         build("auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
		PasswordReset: build("password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts),
	}
}
