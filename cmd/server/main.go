package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	closingapp "github.com/oroshi/backoffice/internal/application/closing"
	"github.com/oroshi/backoffice/internal/infrastructure/config"
	"github.com/oroshi/backoffice/internal/infrastructure/logger"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence"
	"github.com/oroshi/backoffice/internal/infrastructure/runlock"
	"github.com/oroshi/backoffice/internal/interfaces/http/handler"
	"github.com/oroshi/backoffice/internal/interfaces/http/middleware"
	"github.com/oroshi/backoffice/internal/interfaces/http/router"
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

	log.Info("Starting backoffice server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize the run locker. Redis serializes runs across processes;
	// when Redis is unreachable the in-memory locker still serializes runs
	// within this process.
	var locker closingapp.RunLocker
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-process run locking",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err))
		locker = runlock.NewMemoryLocker()
	} else {
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
		locker = runlock.NewRedisLocker(rdb)
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}
	pingCancel()

	// Initialize repositories
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	workingRepo := persistence.NewGormWorkingSetRepository(db.DB)
	flowRepo := persistence.NewGormFlowRepository(db.DB)
	productRepo := persistence.NewGormProductMasterRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierMasterRepository(db.DB)
	customerRepo := persistence.NewGormCustomerMasterRepository(db.DB)

	// Initialize application services
	policy := closingapp.MissingMasterPolicy(cfg.Closing.MissingMasterPolicy)
	workingSetManager := closingapp.NewWorkingSetManager(ledgerRepo, workingRepo, flowRepo, productRepo, policy, log)
	flowAggregator := closingapp.NewFlowAggregator(flowRepo, workingRepo, log)
	valuationService := closingapp.NewValuationService(workingRepo, log)
	profitService := closingapp.NewProfitService(workingRepo, flowRepo, supplierRepo, customerRepo, policy, log)
	ledgerCloser := closingapp.NewLedgerCloser(ledgerRepo, workingRepo, log)
	runService := closingapp.NewRunService(
		workingSetManager,
		flowAggregator,
		valuationService,
		profitService,
		ledgerCloser,
		flowRepo,
		locker,
		closingapp.RunConfig{
			StoreTimeout:  cfg.Closing.StoreTimeout,
			RetryAttempts: cfg.Closing.RetryAttempts,
			RetryBackoff:  cfg.Closing.RetryBackoff,
			LockTTL:       cfg.Closing.LockTTL,
		},
		log,
	)
	reportService := closingapp.NewReportService(ledgerRepo, workingRepo, log)

	// Initialize HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
	)

	engine.GET("/health", healthHandler(db))

	closingHandler := handler.NewClosingHandler(runService, reportService)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(closingHandler)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
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
