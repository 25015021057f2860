package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/devmarket/backend/internal/application/cart"
	catalogapp "github.com/devmarket/backend/internal/application/catalog"
	checkoutapp "github.com/devmarket/backend/internal/application/checkout"
	dashboardapp "github.com/devmarket/backend/internal/application/dashboard"
	identityapp "github.com/devmarket/backend/internal/application/identity"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/infrastructure/auth"
	"github.com/devmarket/backend/internal/infrastructure/cache"
	"github.com/devmarket/backend/internal/infrastructure/config"
	"github.com/devmarket/backend/internal/infrastructure/event"
	"github.com/devmarket/backend/internal/infrastructure/logger"
	"github.com/devmarket/backend/internal/infrastructure/payment"
	"github.com/devmarket/backend/internal/infrastructure/persistence"
	"github.com/devmarket/backend/internal/infrastructure/storage"
	"github.com/devmarket/backend/internal/infrastructure/telemetry"
	"github.com/devmarket/backend/internal/interfaces/http/handler"
	"github.com/devmarket/backend/internal/interfaces/http/middleware"
	"github.com/devmarket/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting DevMarket API",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// database
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Database close failed", zap.Error(err))
		}
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// event bus
	eventBus := event.NewInMemoryEventBus(log.Named("events"))

	// payment gateway
	stripeConfig := &payment.StripeConfig{
		SecretKey:      cfg.Stripe.SecretKey,
		PublishableKey: cfg.Stripe.PublishableKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		IsTestMode:     cfg.App.Env != "production",
		Currency:       cfg.Stripe.Currency,
		SuccessURL:     cfg.Stripe.SuccessURL,
		CancelURL:      cfg.Stripe.CancelURL,
	}
	gateway, err := payment.NewStripeGateway(stripeConfig, log.Named("stripe"))
	if err != nil {
		log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
	}

	// object storage; the stub keeps local development working without a bucket
	var downloadSigner checkoutapp.DownloadURLSigner
	var uploadSigner dashboardapp.UploadURLSigner
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Storage(&cfg.Storage, storage.WithLogger(log.Named("storage")))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		downloadSigner = s3
		uploadSigner = s3
	} else {
		log.Warn("No storage bucket configured, using stub signer")
		stub := storage.NewStubStorage()
		downloadSigner = stub
		uploadSigner = stub
	}

	// webhook idempotency store; Redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = redisStore
	} else {
		log.Warn("No Redis configured, using in-memory idempotency store")
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}

	// application services
	jwtService := auth.NewJWTService(cfg.JWT)

	authService := identityapp.NewAuthService(identityapp.AuthServiceConfig{
		UserRepo:   userRepo,
		JWTService: jwtService,
		EventBus:   eventBus,
		Logger:     log.Named("auth"),
	})
	catalogService := catalogapp.NewCatalogService(catalogapp.CatalogServiceConfig{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		Logger:       log.Named("catalog"),
	})
	categoryService := catalogapp.NewCategoryService(categoryRepo, log.Named("categories"))
	cartService := cartapp.NewCartService(cartRepo, productRepo, orderRepo, log.Named("cart"))
	checkoutService := checkoutapp.NewCheckoutService(checkoutapp.CheckoutServiceConfig{
		OrderRepo:   orderRepo,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		Gateway:     gateway,
		Signer:      downloadSigner,
		EventBus:    eventBus,
		Logger:      log.Named("checkout"),
	})
	webhookService := checkoutapp.NewWebhookService(checkoutapp.WebhookServiceConfig{
		WebhookSecret:     cfg.Stripe.WebhookSecret,
		CheckoutService:   checkoutService,
		OrderRepo:         orderRepo,
		IdempotencyStore:  idempotencyStore,
		IdempotencyConfig: shared.DefaultIdempotencyConfig(),
		Logger:            log.Named("webhooks"),
	})
	dashboardService := dashboardapp.NewDashboardService(dashboardapp.DashboardServiceConfig{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
		UserRepo:     userRepo,
		Uploader:     uploadSigner,
		UploadTTL:    cfg.Storage.UploadTTL,
		EventBus:     eventBus,
		Logger:       log.Named("dashboard"),
	})

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig(cfg)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	// middleware handed to handlers
	authMW := middleware.JWTAuthMiddleware(jwtService)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	loginMW := middleware.AuthRateLimit(loginLimiter)
	sellerMW := middleware.RequireSeller()
	adminMW := middleware.RequireAdmin()

	apiLimiter := middleware.NewRateLimiter(300, time.Minute)
	engine.Use(middleware.RateLimit(apiLimiter))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(db.DB)).
		Register(handler.NewAuthHandler(authService, authMW, loginMW, adminMW)).
		Register(handler.NewCatalogHandler(catalogService, categoryService)).
		Register(handler.NewCategoryHandler(categoryService, authMW, adminMW)).
		Register(handler.NewCartHandler(cartService, authMW)).
		Register(handler.NewCheckoutHandler(checkoutService, cartService, authMW)).
		Register(handler.NewStripeWebhookHandler(webhookService, log.Named("webhooks"))).
		Register(handler.NewDashboardHandler(dashboardService, authMW, sellerMW, adminMW))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

// corsConfig merges the configured CORS values over the defaults
func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cors
}
