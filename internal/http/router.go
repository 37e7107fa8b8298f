package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/prabhdip/recipebox/internal/config"
	"github.com/prabhdip/recipebox/internal/http/handlers"
	"github.com/prabhdip/recipebox/internal/http/middlewares"
	"github.com/prabhdip/recipebox/internal/observability"
	"github.com/prabhdip/recipebox/internal/repo/postgres"
	"github.com/prabhdip/recipebox/internal/session"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, sessions session.Store, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// metrics registry, plus the standard process/go collectors
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware("recipebox"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	// health + metrics
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	pingSessions := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return sessions.Ping(ctx)
	}

	h := handlers.NewHealthHandler(pingDB, pingSessions)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	recipesRepo := postgres.NewRecipesRepo(pool, prom)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, sessions, cfg)
	recipesHandler := handlers.NewRecipesHandler(recipesRepo)

	sessionAuth := middlewares.NewSessionAuth(sessions, usersRepo)

	// credential endpoints get a tight per-IP window
	loginLimiter := middlewares.NewRateLimiter(20, time.Minute)
	authedLimiter := middlewares.NewRateLimiter(120, time.Minute)

	r.POST("/signup", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.SignUp)
	r.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	authed := r.Group("", sessionAuth.RequireSession(), authedLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	authed.GET("/check_session", authHandler.CheckSession)
	authed.DELETE("/logout", authHandler.Logout)
	authed.GET("/recipes", recipesHandler.List)
	authed.POST("/recipes", recipesHandler.Create)

	return r
}
