package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	lendingapp "github.com/clinicore/backend/internal/application/lending"
	"github.com/clinicore/backend/internal/infrastructure/config"
	"github.com/clinicore/backend/internal/infrastructure/event"
	"github.com/clinicore/backend/internal/infrastructure/logger"
	"github.com/clinicore/backend/internal/infrastructure/persistence"
	"github.com/clinicore/backend/internal/interfaces/http/handler"
	"github.com/clinicore/backend/internal/interfaces/http/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Clinicore Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories and unit of work
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	scheduleRepo := persistence.NewGormLoanScheduleRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Initialize event bus with the audit logging subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(log))

	// Initialize application services
	loanService := lendingapp.NewLoanService(lendingapp.LoanServiceConfig{
		UnitOfWork:     uow,
		LoanRepo:       loanRepo,
		ScheduleRepo:   scheduleRepo,
		EventPublisher: eventBus,
		Logger:         log,
	})
	paymentService := lendingapp.NewPaymentService(lendingapp.PaymentServiceConfig{
		UnitOfWork:     uow,
		EventPublisher: eventBus,
		Logger:         log,
	})
	regenerationService := lendingapp.NewRegenerationService(lendingapp.RegenerationServiceConfig{
		UnitOfWork:     uow,
		EventPublisher: eventBus,
		Logger:         log,
	})

	// Initialize handlers
	loanHandler := handler.NewLoanHandler(loanService, paymentService, regenerationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

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
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes
	v1 := engine.Group("/api/v1")
	{
		loans := v1.Group("/lending/loans")
		{
			loans.POST("", loanHandler.Create)
			loans.GET("", loanHandler.List)
			loans.GET("/:number", loanHandler.GetByNumber)
			loans.POST("/:number/regenerate", loanHandler.Regenerate)
			loans.POST("/:number/default", loanHandler.MarkDefaulted)
		}
		schedules := v1.Group("/lending/schedules")
		{
			schedules.POST("/:id/payment", loanHandler.RegisterPayment)
			schedules.DELETE("/:id/payment", loanHandler.UnlinkPayment)
			schedules.POST("/:id/skip", loanHandler.SkipInstallment)
		}
	}

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
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
