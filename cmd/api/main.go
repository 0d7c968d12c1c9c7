package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rifahub/backend/internal/gateway"
	"github.com/rifahub/backend/internal/handler"
	"github.com/rifahub/backend/internal/repository"
	"github.com/rifahub/backend/internal/service"
	"github.com/rifahub/backend/internal/worker"
	"github.com/rifahub/backend/pkg/config"
	"github.com/rifahub/backend/pkg/database"
	"github.com/rifahub/backend/pkg/logger"
	"github.com/rifahub/backend/pkg/middleware"
	pkgredis "github.com/rifahub/backend/pkg/redis"
	"github.com/rifahub/backend/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Init(&logger.Config{
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
		OutputPath:  "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	})
	if err != nil {
		log.Fatal("failed to init telemetry", zap.Error(err))
	}

	db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinIdleConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories
	slotRepo := repository.NewPostgresSlotRepository(db.Pool)
	raffleRepo := repository.NewPostgresRaffleRepository(db.Pool)
	campaignRepo := repository.NewPostgresCampaignRepository(db.Pool)
	pledgeRepo := repository.NewPostgresPledgeRepository(db.Pool)
	organizerRepo := repository.NewPostgresOrganizerRepository(db.Pool)
	paymentRepo := repository.NewPostgresPaymentRepository(db.Pool)

	// Payment gateway
	gw, err := gateway.New(gateway.Config{
		Provider:      cfg.Payment.Provider,
		APIKey:        cfg.Payment.APIKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
		SuccessURL:    cfg.Payment.SuccessURL,
		CancelURL:     cfg.Payment.CancelURL,
	})
	if err != nil {
		log.Fatal("failed to init payment gateway", zap.Error(err))
	}

	// Services
	quotaService := service.NewQuotaService(organizerRepo, raffleRepo, campaignRepo)
	reservationService := service.NewReservationService(
		slotRepo, raffleRepo,
		cfg.Reservation.HoldTTL, cfg.Reservation.AutoAllocateRetries,
		log,
	)
	raffleService := service.NewRaffleService(raffleRepo, slotRepo, quotaService, log)
	campaignService := service.NewCampaignService(campaignRepo, pledgeRepo, quotaService, log)
	checkoutService := service.NewCheckoutService(paymentRepo, reservationService, raffleService, campaignService, gw, log)
	lookupService := service.NewLookupService(slotRepo, pledgeRepo, raffleRepo, campaignRepo)
	organizerService := service.NewOrganizerService(organizerRepo)

	// Background sweeper for abandoned reservations
	expiryWorker := worker.NewExpiryWorker(reservationService, log, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Reservation.SweepInterval,
		BatchSize:    cfg.Reservation.SweepBatchSize,
	})
	expiryWorker.Start(ctx)
	defer expiryWorker.Stop()

	// HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	rateLimit := middleware.DefaultRateLimitConfig()
	rateLimit.UseRedis = true
	rateLimit.RedisClient = redisClient

	auditLogger := middleware.NewAuditLogger(middleware.DefaultAuditConfig(db.Pool))
	defer auditLogger.Close()

	handler.SetupRoutes(router, &handler.RouterConfig{
		JWTSecret: cfg.JWT.Secret,
		RateLimit: rateLimit,
		Audit:     auditLogger,
		Raffles:   handler.NewRaffleHandler(raffleService, quotaService),
		Campaigns: handler.NewCampaignHandler(campaignService),
		Checkout:  handler.NewCheckoutHandler(checkoutService),
		Webhooks:  handler.NewWebhookHandler(checkoutService, gw, redisClient, log),
		Lookup:    handler.NewLookupHandler(lookupService),
		Organizer: handler.NewOrganizerHandler(organizerService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
