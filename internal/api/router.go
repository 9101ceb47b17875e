package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/mw"
)

// RouterOptions carries the optional collaborators of NewRouter.
type RouterOptions struct {
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.AccessLog(opts.Metrics))

	var apiMiddleware []gin.HandlerFunc
	if cfg.RateLimitPerSec > 0 {
		apiMiddleware = append(apiMiddleware, mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	}
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		cacheStore := cache.New(ttl, 2*ttl)
		apiMiddleware = append(apiMiddleware, mw.Cache(cacheStore, ttl))
	}

	r.GET("/healthz", h.Healthz)
	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.MetricsHandler))
	}

	// API group
	api := r.Group("/api")
	api.Use(apiMiddleware...)
	{
		api.GET("/availability", h.GetAvailability)

		api.GET("/bookings", h.ListAssignments)
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:id", h.GetBooking)
		api.PUT("/bookings/:id", h.UpdateBooking)

		api.GET("/workers", h.ListWorkers)
		api.POST("/workers", h.CreateWorker)
		api.GET("/workers/:id", h.GetWorker)
		api.PUT("/workers/:id", h.UpdateWorker)
		api.DELETE("/workers/:id", h.DeleteWorker)

		api.GET("/vehicles", h.ListVehicles)
		api.POST("/vehicles", h.CreateVehicle)
		api.GET("/vehicles/:id", h.GetVehicle)
		api.PUT("/vehicles/:id", h.UpdateVehicle)
		api.DELETE("/vehicles/:id", h.DeleteVehicle)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
