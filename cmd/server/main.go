package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/cache"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/sheets"
	"github.com/legnamegusta-ctrl/apporgania/internal/scheduler"
	"github.com/legnamegusta-ctrl/apporgania/internal/server/handlers"
	"github.com/legnamegusta-ctrl/apporgania/internal/server/router"
	authsvc "github.com/legnamegusta-ctrl/apporgania/internal/service/auth"
	dashboardsvc "github.com/legnamegusta-ctrl/apporgania/internal/service/dashboard"
	reportsvc "github.com/legnamegusta-ctrl/apporgania/internal/service/report"
	"github.com/legnamegusta-ctrl/apporgania/pkg/clients/irrigation"
	"github.com/legnamegusta-ctrl/apporgania/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	redisConn, err := cache.NewRedis(cfg.Redis, baseLogger.Named("cache.redis"))
	if err != nil {
		baseLogger.Fatal("failed to init redis", zap.Error(err))
	}
	defer func() {
		if err := redisConn.Close(); err != nil {
			baseLogger.Error("failed to close redis connection", zap.Error(err))
		}
	}()

	propertyRepo := mongodb.NewPropertyRepository(store, baseLogger.Named("repo.properties"))
	activityRepo := mongodb.NewActivityRepository(store, baseLogger.Named("repo.activities"))
	snapshotRepo := mongodb.NewSnapshotRepository(store)
	userRepo := mongodb.NewUserRepository(store)
	orderRepo := mongodb.NewOrderRepository(store)

	kpiCache := cache.NewKPICache(redisConn)
	sessionStore := cache.NewSessionStore(redisConn)

	authService := authsvc.NewService(userRepo, sessionStore, cfg.Auth, baseLogger.Named("svc.auth"))
	dashboardService := dashboardsvc.NewService(propertyRepo, activityRepo, snapshotRepo, kpiCache, cfg.Dashboard, baseLogger.Named("svc.dashboard"))

	// Spreadsheet sink is optional; PDF export works without it.
	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("spreadsheet export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	exporter := reportsvc.NewExporter(cfg.Dashboard.ReportMaxActivities, sheetsRepo, baseLogger.Named("svc.report"))

	var telemetry irrigation.Client
	if cfg.Irrigation.BaseURL != "" {
		telemetry = irrigation.NewClient(cfg.Irrigation)
		baseLogger.Info("irrigation telemetry client enabled")
	} else {
		baseLogger.Warn("irrigation api url missing, snapshots will mark irrigation unavailable")
	}

	authHandler := handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth"))
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, propertyRepo, exporter, cfg.Dashboard.FetchTimeout, baseLogger.Named("handlers.dashboard"))
	orderHandler := handlers.NewOrderHandler(orderRepo, baseLogger.Named("handlers.orders"))
	engine := router.New(authService, authHandler, dashboardHandler, orderHandler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(cfg.Snapshot, propertyRepo, snapshotRepo, telemetry, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
