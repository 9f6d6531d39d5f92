package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"land-backend/internal/auth"
	"land-backend/internal/cache"
	"land-backend/internal/config"
	"land-backend/internal/database"
	"land-backend/internal/db"
	"land-backend/internal/handlers"
	"land-backend/internal/health"
	h "land-backend/internal/http"
	"land-backend/internal/middleware"
	"land-backend/internal/repositories"
	"land-backend/internal/services"
	"land-backend/internal/storage"
	"land-backend/internal/timeutil"
	"land-backend/migrations"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.Log.Level, cfg.Log.Format)

	if err := timeutil.SetLocation(cfg.Server.Timezone); err != nil {
		log.Printf("[Config] Unknown timezone %q, using UTC: %v", cfg.Server.Timezone, err)
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Run migrations before serving
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("[Migrations] Failed: %v", err)
	}

	// Redis is optional, every cache helper degrades to a no-op without it
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("[Redis] Unavailable at %s, continuing without cache: %v", cfg.Redis.Addr, err)
	} else {
		log.Printf("[Redis] Connected to %s", cfg.Redis.Addr)
		defer cache.Close()
	}

	// Object storage is optional too; without it photo uploads are refused
	var photos services.PhotoStore
	var storagePinger health.Pinger
	if cfg.Storage.Enabled() {
		store, err := storage.NewPhotoStore(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("[Storage] Failed to configure bucket %s: %v", cfg.Storage.Bucket, err)
		}
		photos = store
		storagePinger = store
		log.Printf("[Storage] Using bucket %s", cfg.Storage.Bucket)
	} else {
		log.Printf("[Storage] Not configured, photo uploads disabled")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	entityRepo := repositories.NewEntityRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	propertyRepo := repositories.NewPropertyRepository(pool)
	activityRepo := repositories.NewActivityLogRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	tx := repositories.NewTransactor(pool)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	hub := services.NewNotificationHub(logger)
	notificationService := services.NewNotificationService(notificationRepo, hub, logger)
	userService := services.NewUserService(userRepo, jwtManager)
	customerService := services.NewCustomerService(customerRepo, activityRepo, tx, logger)
	propertyService := services.NewPropertyService(propertyRepo, customerRepo, activityRepo, tx, photos, logger)
	workflowService := services.NewWorkflowService(entityRepo, userRepo, activityRepo, tx, notificationService, photos, logger)
	queueService := services.NewReviewQueueService(customerRepo, propertyRepo, userRepo,
		cfg.Workflow.OverdueThresholdDays, cfg.Workflow.QueueLimit, logger)

	// Handlers
	router := h.NewRouter(
		handlers.NewAuthHandler(userService, logger),
		handlers.NewUserHandler(userService, logger),
		handlers.NewCustomerHandler(customerService, logger),
		handlers.NewPropertyHandler(propertyService, logger),
		handlers.NewWorkflowHandler(workflowService, customerService, propertyService, logger),
		handlers.NewReviewQueueHandler(queueService, logger),
		handlers.NewNotificationHandler(notificationService, hub, logger),
		handlers.NewHealthHandler(health.NewHealthChecker(pool, storagePinger)),
		middleware.NewAuthMiddleware(jwtManager, userRepo),
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(logger)(middleware.RequestLogger(logger)(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
