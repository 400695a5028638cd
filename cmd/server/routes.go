package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/api"
	analyticsapi "github.com/Nixie-Tech-LLC/marquee/internal/http/api/admin/analytics/endpoints"
	clientapi "github.com/Nixie-Tech-LLC/marquee/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/redis"
	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

// newRouter builds the gin engine. X-Forwarded-For is honoured only from
// cfg.TrustedProxies.
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestLogger())
	return r, nil
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc *signage.Service) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
			"X-If-None-Match",
			"Idempotency-Key",
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
			"Retry-After",
			middleware.RequestIDHeader,
		},
		AllowCredentials: false,
	}))

	r.GET("/healthz", healthz(svc))

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
	},
		analyticsapi.AnalyticsModule(svc),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		clientapi.ScreenModule(svc),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
		Middleware: []gin.HandlerFunc{
			middleware.ScreenAuth(middleware.JWTScreenIdentity{Secret: cfg.JWTSecret}),
		},
	},
		clientapi.TelemetryModule(svc),
	)
}

func healthz(svc *signage.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := svc.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("health check: database unreachable")
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if err := redis.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("health check: redis unreachable")
			status["redis"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
