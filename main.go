package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/config"
	"marketplace/controllers"
	"marketplace/logger"
	"marketplace/middleware"
	"marketplace/routes"
	"marketplace/services/analytics"
	"marketplace/services/notification"
	"marketplace/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	gin.SetMode(cfg.GinMode)
	logger.Log.Infof("Running in %s mode", gin.Mode())

	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Log.WithError(err).Fatal("database connection failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.EnsureIndexes(ctx); err != nil {
		logger.Log.WithError(err).Warn("index creation failed")
	}
	if err := controllers.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Log.WithError(err).Error("admin seed failed")
	}
	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("redis unavailable, analytics cache disabled")
	}
	cancel()

	store, err := storage.New(cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("image storage disabled")
	} else {
		controllers.SetStorage(store)
	}

	notifier, err := notification.New(cfg.TelegramToken, cfg.TelegramChatIDs)
	if err != nil {
		logger.Log.WithError(err).Warn("telegram notifications disabled")
	}
	controllers.SetNotifier(notifier)

	reports := analytics.NewService(
		analytics.NewMongoSource(config.OrderCollection, config.ProductCollection, config.CategoryCollection),
		analytics.WithLocation(cfg.Location()),
		analytics.WithLocale(cfg.MonthLocale),
		analytics.WithCache(analytics.NewCache(rdb, cfg.AnalyticsCacheTTL)),
	)

	s := gocron.NewScheduler(cfg.Location())
	if rdb != nil && cfg.AnalyticsCacheTTL > 0 {
		_, err := s.Every(cfg.AnalyticsWarmInterval).Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.AnalyticsTimeout)
			defer cancel()
			reports.Warm(ctx)
		})
		if err != nil {
			logger.Log.WithError(err).Error("failed to schedule analytics warm job")
		}
	}
	s.StartAsync()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	middleware.InitMetrics()
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", middleware.MetricsGuard(cfg.MetricsAllowedIP), gin.WrapH(promhttp.Handler()))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 50 << 20

	routes.InitializeRoutes(r, reports, cfg.AnalyticsTimeout)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logger.Log.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	s.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("graceful shutdown failed")
	}
	if rdb != nil {
		rdb.Close()
	}
	config.DisconnectDatabase(shutdownCtx)
}
