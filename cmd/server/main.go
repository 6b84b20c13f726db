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

	appdoc "github.com/workshop/backend/internal/application/document"
	"github.com/workshop/backend/internal/infrastructure/config"
	"github.com/workshop/backend/internal/infrastructure/logger"
	"github.com/workshop/backend/internal/infrastructure/migration"
	"github.com/workshop/backend/internal/infrastructure/persistence"
	"github.com/workshop/backend/internal/infrastructure/scheduler"
	"github.com/workshop/backend/internal/interfaces/http/handler"
	"github.com/workshop/backend/internal/interfaces/http/middleware"
	"github.com/workshop/backend/internal/interfaces/http/router"
)

const migrationsPath = "migrations"

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
		_ = log.Sync()
	}()

	log.Info("Starting workshop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

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

	// Run pending migrations before serving traffic
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database handle", zap.Error(err))
	}
	migrator, err := migration.New(sqlDB, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Initialize repositories
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	quotationService := appdoc.NewQuotationService(quotationRepo)
	workOrderService := appdoc.NewWorkOrderService(workOrderRepo)
	invoiceService := appdoc.NewInvoiceService(invoiceRepo)
	conversionService := appdoc.NewConversionService(txScope)
	metricsService := appdoc.NewMetricsService(quotationRepo, workOrderRepo, invoiceRepo)

	// Initialize handlers
	quotationHandler := handler.NewQuotationHandler(quotationService, conversionService)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService, conversionService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Report JSON field names in binding errors
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, CORS,
	// org scoping.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.OrgScope())

	// Health check endpoint (outside API versioning)
	engine.GET("/healthz", healthHandler(db))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(quotationHandler).
		Register(workOrderHandler).
		Register(invoiceHandler).
		Register(metricsHandler)
	r.Setup()

	// Start the overdue-invoice sweeper
	var sweeper *scheduler.OverdueSweeper
	if cfg.Scheduler.Enabled {
		sweeper = scheduler.NewOverdueSweeper(scheduler.OverdueSweeperConfig{
			Interval: cfg.Scheduler.SweepInterval,
		}, invoiceRepo, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start overdue sweeper", zap.Error(err))
		}
		log.Info("Overdue sweeper started", zap.Duration("interval", cfg.Scheduler.SweepInterval))
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

	if sweeper != nil {
		if err := sweeper.Stop(ctx); err != nil {
			log.Warn("Overdue sweeper did not stop cleanly", zap.Error(err))
		}
	}

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
