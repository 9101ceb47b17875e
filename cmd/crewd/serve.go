package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/api"
	"crew-booking-backend/internal/availability"
	"crew-booking-backend/internal/booking"
	"crew-booking-backend/internal/db"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/notification"
	"crew-booking-backend/internal/roster"
	"crew-booking-backend/internal/schedule"
	"crew-booking-backend/internal/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, roster sync and notification workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Infof("database initialized successfully")

	var rec metrics.Recorder = metrics.NopRecorder{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom, err := metrics.NewPromRecorder(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		rec, metricsHandler = prom, prom.Handler()
	}

	cal, err := schedule.NewCalendar(cfg.Schedule)
	if err != nil {
		return err
	}

	appStore := store.NewGormStore(gormDB)
	resolver := availability.NewResolver(appStore, cal, rec)
	opts := []booking.Option{booking.WithMetrics(rec)}

	var webpushOptions *webpush.Options
	var pool *notification.WorkerPool
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, cal.Location)
		pool.SetMetrics(rec)
		opts = append(opts, booking.WithNotifier(pool))
	} else {
		log.Warnf("VAPID keys are not configured; crew notifications are disabled")
	}

	coord := booking.NewCoordinator(appStore, resolver, opts...)
	handler := api.NewHandler(coord, appStore, webpushOptions)
	router := api.NewRouter(handler, cfg.Server, api.RouterOptions{
		Metrics:        rec,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if pool != nil {
		pool.Start(ctx)
	}

	rosterSvc := roster.NewService(cfg.Roster, appStore, rec)
	g.Go(func() error {
		rosterSvc.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Infof("Shutdown signal received, stopping services...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof("Server gracefully stopped")
	return nil
}
