package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/costerbox/backend/internal/application/catalog"
	chatapp "github.com/costerbox/backend/internal/application/chat"
	checkoutapp "github.com/costerbox/backend/internal/application/checkout"
	identityapp "github.com/costerbox/backend/internal/application/identity"
	"github.com/costerbox/backend/internal/application/media"
	orderapp "github.com/costerbox/backend/internal/application/order"
	shippingapp "github.com/costerbox/backend/internal/application/shipping"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/infrastructure/auth"
	"github.com/costerbox/backend/internal/infrastructure/cache"
	"github.com/costerbox/backend/internal/infrastructure/config"
	"github.com/costerbox/backend/internal/infrastructure/event"
	"github.com/costerbox/backend/internal/infrastructure/logger"
	"github.com/costerbox/backend/internal/infrastructure/payment"
	"github.com/costerbox/backend/internal/infrastructure/persistence"
	"github.com/costerbox/backend/internal/infrastructure/shipment"
	"github.com/costerbox/backend/internal/infrastructure/storage"
	"github.com/costerbox/backend/internal/interfaces/http/handler"
	"github.com/costerbox/backend/internal/interfaces/http/middleware"
	"github.com/costerbox/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Costerbox Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	threadRepo := persistence.NewGormThreadRepository(db.DB)

	// Redis backs token revocation and webhook deduplication when configured;
	// the in-memory fallbacks only suit a single instance
	var (
		tokenBlacklist   auth.TokenBlacklist
		idempotencyStore shared.IdempotencyStore
	)
	if cfg.Redis.Host != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		idempotencyStore = cache.NewRedisIdempotencyStore(redisClient, "costerbox")
		log.Info("Redis connected successfully",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis not configured, using in-memory token blacklist and idempotency store")
	}

	// Payment gateway client
	paymentGateway, err := payment.NewRazorpayAdapter(payment.RazorpayConfig{
		BaseURL:       cfg.Razorpay.BaseURL,
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		Timeout:       cfg.Razorpay.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Courier aggregator client
	courierGateway, err := shipment.NewClient(shipment.Config{
		BaseURL:  cfg.Courier.BaseURL,
		Email:    cfg.Courier.Email,
		Password: cfg.Courier.Password,
		TokenTTL: cfg.Courier.TokenTTL,
		Timeout:  cfg.Courier.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize courier client", zap.Error(err))
	}

	// Object storage for product images and chat media
	var objectStorage media.ObjectStorage
	if cfg.Storage.Bucket != "" {
		objectStorage, err = storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		log.Info("Object storage connected",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("endpoint", cfg.Storage.Endpoint),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured, media uploads are disabled")
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, eventBus, log)

	// Catalog services
	productService := catalogapp.NewProductService(productRepo, categoryRepo, objectStorage, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)

	// Checkout services
	checkoutService := checkoutapp.NewCheckoutService(orderRepo, productRepo, paymentGateway, eventBus, log)
	webhookService := checkoutapp.NewWebhookService(orderRepo, paymentGateway, idempotencyStore, eventBus, log)

	// Order services
	orderService := orderapp.NewOrderService(orderRepo, userRepo, eventBus, log)
	adminOrderService := orderapp.NewAdminOrderService(orderRepo, userRepo, log)

	// Shipping service
	shippingService := shippingapp.NewShippingService(orderRepo, userRepo, productRepo, courierGateway, eventBus, log)

	// Chat service
	chatService := chatapp.NewChatService(threadRepo, objectStorage, eventBus, log)

	// Register event handlers for cross-context integration
	// Order claimed -> open the customer/artisan conversation
	orderClaimedHandler := chatapp.NewOrderClaimedHandler(chatService, orderRepo, log)
	eventBus.Subscribe(orderClaimedHandler)

	log.Info("Event handlers registered",
		zap.Strings("order_claimed_events", orderClaimedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	webhookHandler := handler.NewPaymentWebhookHandler(webhookService)
	orderHandler := handler.NewOrderHandler(orderService)
	adminOrderHandler := handler.NewAdminOrderHandler(adminOrderService, orderService, shippingService)
	chatHandler := handler.NewChatHandler(chatService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Stricter limiter for credential endpoints; a no-op guard keeps the
	// route table identical when it is disabled
	authGuard := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authGuard = middleware.AuthRateLimit(authLimiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Payment gateway webhook endpoint (no authentication; the handler
	// verifies the gateway signature itself)
	webhookGroup := engine.Group("/api/v1/webhooks")
	webhookGroup.POST("/payments", webhookHandler.HandlePaymentWebhook)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhooks",
			"/api/v1/products",
			"/api/v1/categories",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Identity routes (register/login/refresh are public via skip paths)
	authRoutes := router.NewDomainGroup("identity", "/auth")
	authRoutes.POST("/register", authGuard, authHandler.Register)
	authRoutes.POST("/login", authGuard, authHandler.Login)
	authRoutes.POST("/refresh", authGuard, authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)
	authRoutes.PUT("/pickup-address", middleware.RequireArtisan(), authHandler.UpdatePickupAddress)
	authRoutes.PUT("/zone", middleware.RequireArtisan(), authHandler.UpdateZone)

	// Public catalog (reads only; writes live under /admin)
	catalogRoutes := router.NewDomainGroup("catalog", "")
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/:id/images", productHandler.ListImages)
	catalogRoutes.GET("/categories", categoryHandler.List)
	catalogRoutes.GET("/categories/:id", categoryHandler.GetByID)
	catalogRoutes.GET("/categories/slug/:slug", categoryHandler.GetBySlug)

	// Checkout routes (customer session)
	checkoutRoutes := router.NewDomainGroup("checkout", "/checkout")
	checkoutRoutes.POST("/orders", checkoutHandler.PlaceOrder)
	checkoutRoutes.POST("/orders/:id/confirm", checkoutHandler.ConfirmPayment)
	checkoutRoutes.POST("/orders/:id/balance-session", checkoutHandler.CreateBalanceSession)

	// Customer order routes
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("", orderHandler.ListMine)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)

	// Artisan routes (claim feed and assigned work)
	artisanRoutes := router.NewDomainGroup("artisan", "/artisan")
	artisanRoutes.Use(middleware.RequireArtisan())
	artisanRoutes.GET("/feed", orderHandler.ListClaimable)
	artisanRoutes.GET("/orders", orderHandler.ListAssigned)
	artisanRoutes.POST("/orders/:id/claim", orderHandler.Claim)
	artisanRoutes.POST("/orders/:id/request-balance", orderHandler.RequestBalance)

	// Chat routes
	chatRoutes := router.NewDomainGroup("chat", "/chat")
	chatRoutes.POST("/threads", chatHandler.OpenThread)
	chatRoutes.GET("/threads", chatHandler.ListThreads)
	chatRoutes.GET("/threads/:id", chatHandler.GetThread)
	chatRoutes.GET("/threads/:id/messages", chatHandler.ListMessages)
	chatRoutes.POST("/threads/:id/messages", chatHandler.PostText)
	chatRoutes.POST("/threads/:id/media", chatHandler.PostMedia)
	chatRoutes.POST("/threads/:id/media/upload-url", chatHandler.RequestMediaUpload)

	// Admin routes (catalog management, order oversight, chat hijack)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	adminRoutes.POST("/products", productHandler.Create)
	adminRoutes.PUT("/products/:id", productHandler.Update)
	adminRoutes.DELETE("/products/:id", productHandler.Delete)
	adminRoutes.POST("/products/:id/images/upload-url", productHandler.RequestImageUpload)
	adminRoutes.POST("/products/:id/images", productHandler.ConfirmImageUpload)
	adminRoutes.POST("/categories", categoryHandler.Create)
	adminRoutes.PUT("/categories/:id", categoryHandler.Rename)
	adminRoutes.DELETE("/categories/:id", categoryHandler.Delete)
	adminRoutes.GET("/orders", adminOrderHandler.Search)
	adminRoutes.GET("/orders/stats", adminOrderHandler.StatusCounts)
	adminRoutes.POST("/orders/:id/force-status", adminOrderHandler.ForceStatus)
	adminRoutes.PUT("/orders/:id/tracking", adminOrderHandler.OverrideTracking)
	adminRoutes.POST("/orders/:id/reassign", adminOrderHandler.ReassignArtisan)
	adminRoutes.POST("/orders/:id/flag", adminOrderHandler.Flag)
	adminRoutes.POST("/orders/:id/unflag", adminOrderHandler.Unflag)
	adminRoutes.POST("/orders/:id/ship", adminOrderHandler.Ship)
	adminRoutes.POST("/orders/:id/deliver", adminOrderHandler.MarkDelivered)
	adminRoutes.GET("/chat/threads", chatHandler.ListHijacked)
	adminRoutes.POST("/chat/threads/:id/hijack", chatHandler.Hijack)
	adminRoutes.POST("/chat/threads/:id/release", chatHandler.Release)

	// Register all domain groups
	r.Register(authRoutes).
		Register(catalogRoutes).
		Register(checkoutRoutes).
		Register(orderRoutes).
		Register(artisanRoutes).
		Register(chatRoutes).
		Register(adminRoutes)

	// Register system routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
