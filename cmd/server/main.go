package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appdayend "github.com/hms/backend/internal/application/dayend"
	appledger "github.com/hms/backend/internal/application/ledger"
	apprevenue "github.com/hms/backend/internal/application/revenue"
	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/cache"
	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/hms/backend/internal/infrastructure/event"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/persistence"
	"github.com/hms/backend/internal/interfaces/http/handler"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"github.com/hms/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting HMS revenue backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	// Day-end state lives in Redis when available so boundary and lock
	// are shared across instances, in process memory otherwise.
	clock := shared.SystemClock{}
	var (
		redisClient *redis.Client
		dayState    dayend.DayState
		locker      dayend.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		dayState = cache.NewRedisDayState(redisClient, cfg.DayEnd.BoundaryTTL, cfg.DayEnd.AcknowledgeTTL)
		locker = cache.NewRedisLocker(redisClient)
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dayState = cache.NewInMemoryDayState(clock)
		locker = cache.NewInMemoryLocker()
		log.Warn("Redis disabled, day-end state is process-local")
	}

	// Repositories
	ledgerStore := persistence.NewGormLedgerStore(db.DB)
	appointmentReader := persistence.NewGormAppointmentReader(db.DB)
	serviceReader := persistence.NewGormAppointmentServiceReader(db.DB)
	labTestReader := persistence.NewGormLabTestReader(db.DB)
	saleReader := persistence.NewGormSaleReader(db.DB)
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)

	// Application services
	recognizers := revenue.NewRecognizerSet()
	eventBus := event.NewInMemoryEventBus(log)

	ledgerService := appledger.NewService(ledgerStore, recognizers, eventBus, clock, log, cfg.Ledger.WalletName)
	saleProcessor := appledger.NewSaleProcessor(ledgerStore, saleRepo, stockRepo, recognizers, clock, log, cfg.Ledger.WalletName)

	aggregator := apprevenue.NewAggregator(
		appointmentReader, serviceReader, labTestReader, saleReader,
		dayState, clock, log,
	)
	aggregator.SetSameDayTTL(cfg.DayEnd.SameDayCacheTTL)

	cutoverService := appdayend.NewCutoverService(aggregator, snapshotRepo, dayState, locker, clock, cfg.DayEnd.CloseLockTTL, log)

	// Source change events feed the ledger binder
	binder := appledger.NewRecognitionBinder(ledgerService, log)
	eventBus.Subscribe(binder)
	log.Info("Recognition binder registered", zap.Strings("events", binder.EventTypes()))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewHealthHandler(db, redisClient)).
		Register(handler.NewRevenueHandler(aggregator)).
		Register(handler.NewDayEndHandler(cutoverService)).
		Register(handler.NewSaleHandler(saleProcessor)).
		Register(handler.NewLedgerHandler(ledgerService))
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
