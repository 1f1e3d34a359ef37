package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/app/contracts"
	"screener-service/internal/app/delivery/http/middlewares"
	"screener-service/internal/app/delivery/http/routers"
	"screener-service/internal/app/drivers/database"
	"screener-service/internal/app/drivers/logger"
	"screener-service/internal/app/drivers/messaging"
	"screener-service/internal/app/drivers/storage"
	"screener-service/internal/app/services/core/screeners"
	"screener-service/internal/app/services/core/sessions"
	"screener-service/internal/app/services/core/webhook"
	"screener-service/internal/app/services/shared/jwtmanager"
	"screener-service/internal/app/services/shared/locker"
	"screener-service/internal/app/services/shared/ratelimiter"
	"screener-service/internal/app/services/shared/redis"
	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/app/services/shared/sessionstore"
	"screener-service/internal/app/services/shared/webhookqueue"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/routing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger, err := logger.NewZapLogger(driverConfig, internalConfig)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	if driverConfig.Redis.Enabled {
		bootstrap.Redis, err = database.NewRedisClient(driverConfig)
		if err != nil {
			zapLogger.Fatal("Error connecting to redis", zap.Error(err))
		}
	}
	if driverConfig.MongoDB.Enabled {
		bootstrap.Mongo, err = database.NewMongoDB(driverConfig)
		if err != nil {
			zapLogger.Fatal("Error connecting to mongodb", zap.Error(err))
		}
	}
	if driverConfig.Minio.Enabled {
		bootstrap.Minio, err = storage.NewMinio(driverConfig)
		if err != nil {
			zapLogger.Fatal("Error connecting to minio", zap.Error(err))
		}
	}
	if driverConfig.RabbitMQ.Enabled {
		bootstrap.RabbitMQ, err = messaging.NewRabbitMQ(driverConfig)
		if err != nil {
			zapLogger.Fatal("Error connecting to rabbitmq", zap.Error(err))
		}
	}

	sessionUsecase, err := bootstrapingTheApp(bootstrap)
	if err != nil {
		zapLogger.Fatal("Error bootstrapping the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", internalConfig.App.Port),
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server started", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	zapLogger.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := sessionUsecase.Wait(shutdownCtx); err != nil {
		zapLogger.Warn("Pending submission deliveries abandoned", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) (sessions.SessionUsecase, error) {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Key-value store
	var redisRepository contracts.RedisRepository
	switch internalConfig.Session.Store {
	case constvars.SessionStoreRedis:
		if bootstrap.Redis == nil {
			return nil, fmt.Errorf("session store %q requires REDIS_ENABLED", internalConfig.Session.Store)
		}
		redisRepository = redis.NewRedisRepository(bootstrap.Redis)
	case constvars.SessionStoreMemory:
		redisRepository = redis.NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown session store %q", internalConfig.Session.Store)
	}
	lockService := locker.NewLockService(redisRepository, log)
	sessionStore := sessionstore.NewSessionStore(redisRepository, log)

	// Screeners
	ruleTable, err := screenersource.LoadRuleTable(internalConfig.Screener.RuleTablePath)
	if err != nil {
		return nil, err
	}
	source, err := newScreenerSource(bootstrap)
	if err != nil {
		return nil, err
	}
	registry := screenersource.NewRegistry(
		source,
		ruleTable,
		time.Duration(internalConfig.Screener.CacheTTLInMinute)*time.Minute,
		log,
	)
	if internalConfig.Screener.Source == constvars.ScreenerSourceFile && internalConfig.Screener.Watch {
		watcher, err := screenersource.Watch(internalConfig.Screener.Directory, log, registry.Invalidate)
		if err != nil {
			return nil, err
		}
		bootstrap.WatcherStop = watcher.Stop
	}

	// Submission delivery
	var signer webhook.TokenSigner
	if internalConfig.Webhook.JWTHookKey != "" {
		jwtManager, err := jwtmanager.NewJWTManager(internalConfig, log)
		if err != nil {
			return nil, err
		}
		signer = jwtManager
	}
	sender := webhook.NewHTTPSender(internalConfig, signer, log)

	var publisher contracts.SubmissionPublisher
	switch {
	case internalConfig.Webhook.URL == "":
		log.Warn("WEBHOOK_URL is empty, submissions will not be delivered")
	case internalConfig.Webhook.Delivery == constvars.SubmissionDeliveryQueue:
		if bootstrap.RabbitMQ == nil {
			return nil, fmt.Errorf("webhook delivery %q requires RABBITMQ_ENABLED", internalConfig.Webhook.Delivery)
		}
		queue, err := webhookqueue.NewService(bootstrap.RabbitMQ, log, internalConfig.Webhook.Queue, internalConfig.Webhook.MaxQueue)
		if err != nil {
			return nil, err
		}
		worker := webhook.NewWorker(log, internalConfig, lockService, queue, sender)
		stopWorker := worker.Start(context.Background())
		bootstrap.WorkerStop = func() {
			stopWorker()
			_ = queue.Close()
		}
		publisher = queue
	default:
		publisher = webhook.NewDirectSender(
			log,
			sender,
			time.Duration(internalConfig.Webhook.HTTPTimeoutInSeconds)*time.Second,
		)
	}

	composer := routing.NewComposer(
		routing.WithNotEligiblePath(internalConfig.Routing.NotEligiblePath),
		routing.WithFallbackPath(internalConfig.Routing.FallbackPath),
		routing.WithCategoryPaths(internalConfig.Routing.CategoryPaths),
	)

	// Middlewares
	var sessionLimiter *ratelimiter.ResourceLimiter
	if internalConfig.Session.CreateQuota > 0 {
		sessionLimiter = ratelimiter.NewResourceLimiter(redisRepository, log)
	}
	middlewares := middlewares.NewMiddlewares(log, internalConfig, sessionLimiter)

	// Screener
	screenerUsecase := screeners.NewScreenerUsecase(log, registry)
	screenerController := screeners.NewScreenerController(log, screenerUsecase)

	// Session
	sessionUsecase := sessions.NewSessionUsecase(log, internalConfig, registry, sessionStore, lockService, publisher, composer)
	sessionController := sessions.NewSessionController(log, sessionUsecase)

	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewares, screenerController, sessionController)
	return sessionUsecase, nil
}

func newScreenerSource(bootstrap *config.Bootstrap) (contracts.ScreenerSource, error) {
	screenerConfig := bootstrap.InternalConfig.Screener
	switch screenerConfig.Source {
	case constvars.ScreenerSourceFile:
		return screenersource.NewFileSource(screenerConfig.Directory), nil
	case constvars.ScreenerSourceMinio:
		if bootstrap.Minio == nil {
			return nil, fmt.Errorf("screener source %q requires MINIO_ENABLED", screenerConfig.Source)
		}
		return screenersource.NewMinioSource(bootstrap.Minio, screenerConfig.MinioBucketName, screenerConfig.MinioPrefix), nil
	case constvars.ScreenerSourceMongo:
		if bootstrap.Mongo == nil {
			return nil, fmt.Errorf("screener source %q requires MONGODB_ENABLED", screenerConfig.Source)
		}
		return screenersource.NewMongoSource(bootstrap.Mongo, bootstrap.DriverConfig.MongoDB.DbName, screenerConfig.MongoCollection), nil
	default:
		return nil, fmt.Errorf("unknown screener source %q", screenerConfig.Source)
	}
}
