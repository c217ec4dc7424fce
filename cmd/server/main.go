package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	periodapp "github.com/northtrade/backend/internal/application/period"
	"github.com/northtrade/backend/internal/domain/period"
	"github.com/northtrade/backend/internal/infrastructure/cache"
	"github.com/northtrade/backend/internal/infrastructure/config"
	"github.com/northtrade/backend/internal/infrastructure/logger"
	"github.com/northtrade/backend/internal/infrastructure/persistence"
	"github.com/northtrade/backend/internal/interfaces/http/handler"
	"github.com/northtrade/backend/internal/interfaces/http/middleware"
	"github.com/northtrade/backend/internal/interfaces/http/router"
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

	log.Info("Starting NorthTrade Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
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
	settingRepo := persistence.NewGormSettingRepository(db)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)

	// Cache-coherency notifier: fall back to an in-process notifier when
	// Redis is unavailable so period mutations keep working
	var notifier period.CoherencyNotifier
	var reportCache period.ReportCache
	redisNotifier, err := cache.NewRedisCoherencyNotifier(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithNotifierLogger(log))
	if err != nil {
		log.Warn("Redis unavailable, using in-memory cache notifier", zap.Error(err))
		memNotifier := cache.NewInMemoryCoherencyNotifier()
		notifier = memNotifier
		reportCache = memNotifier
	} else {
		defer func() {
			if err := redisNotifier.Close(); err != nil {
				log.Error("Error closing Redis notifier", zap.Error(err))
			}
		}()
		notifier = redisNotifier
		reportCache = redisNotifier
	}

	// Initialize application services
	periodService := periodapp.NewService(settingRepo, ledgerRepo,
		periodapp.WithNotifier(notifier),
		periodapp.WithReportCache(reportCache),
		periodapp.WithLogger(log),
	)

	// Setup gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}

	// Health check endpoint
	engine.GET("/health", healthHandler(db))

	// Register routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewPeriodHandler(periodService))
	r.Register(handler.NewSystemHandler())
	r.Setup()

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
		resp := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			resp["pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
				"waits":  stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
