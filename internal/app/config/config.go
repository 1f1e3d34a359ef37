package config

import (
	"strings"

	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Enabled:  utils.GetEnvBool("MONGODB_ENABLED", false),
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "screener"),
			Username: utils.GetEnvString("MONGODB_USERNAME", ""),
			Password: utils.GetEnvString("MONGODB_PASSWORD", ""),
		},
		Redis: Redis{
			Enabled:  utils.GetEnvBool("REDIS_ENABLED", true),
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Enabled:  utils.GetEnvBool("RABBITMQ_ENABLED", false),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Enabled:  utils.GetEnvBool("MINIO_ENABLED", false),
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", ""),
			Password: utils.GetEnvString("MINIO_PASSWORD", ""),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "/api/v1"),
			CORSAllowedOrigins:         utils.GetEnvStringSlice("APP_CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 60),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			SubmitRequestsPerSecond:    utils.GetEnvFloat("APP_SUBMIT_REQUESTS_PER_SECOND", 5),
			SubmitBurst:                utils.GetEnvInt("APP_SUBMIT_BURST", 10),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 15),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 1),
		},
		Screener: AppScreener{
			Source:           utils.GetEnvString("SCREENER_SOURCE", constvars.ScreenerSourceFile),
			Directory:        utils.GetEnvString("SCREENER_DIRECTORY", "configs/screeners"),
			Watch:            utils.GetEnvBool("SCREENER_WATCH", false),
			RuleTablePath:    utils.GetEnvString("SCREENER_RULE_TABLE_PATH", ""),
			MinioBucketName:  utils.GetEnvString("SCREENER_MINIO_BUCKET_NAME", "screeners"),
			MinioPrefix:      utils.GetEnvString("SCREENER_MINIO_PREFIX", ""),
			MongoCollection:  utils.GetEnvString("SCREENER_MONGO_COLLECTION", "screeners"),
			CacheTTLInMinute: utils.GetEnvInt("SCREENER_CACHE_TTL_IN_MINUTE", 5),
		},
		Session: AppSession{
			Store:                 utils.GetEnvString("SESSION_STORE", constvars.SessionStoreRedis),
			ExpiredTimeInMinutes:  utils.GetEnvInt("SESSION_EXPIRED_TIME_IN_MINUTES", 120),
			LockExpiredTimeInSecs: utils.GetEnvInt("SESSION_LOCK_EXPIRED_TIME_IN_SECONDS", 5),
			CreateQuota:           utils.GetEnvInt("SESSION_CREATE_QUOTA", 30),
			CreateWindowInSeconds: utils.GetEnvInt("SESSION_CREATE_WINDOW_IN_SECONDS", 60),
		},
		Routing: AppRouting{
			RootDomain:      utils.GetEnvString("ROUTING_ROOT_DOMAIN", ""),
			NotEligiblePath: utils.GetEnvString("ROUTING_NOT_ELIGIBLE_PATH", "thankyou"),
			FallbackPath:    utils.GetEnvString("ROUTING_FALLBACK_PATH", "thankyou"),
			CategoryPaths:   parseKeyValues(utils.GetEnvStringSlice("ROUTING_CATEGORY_PATHS", nil)),
		},
		Webhook: AppWebhook{
			URL:                    utils.GetEnvString("WEBHOOK_URL", ""),
			Delivery:               utils.GetEnvString("WEBHOOK_DELIVERY", constvars.SubmissionDeliveryDirect),
			Queue:                  utils.GetEnvString("WEBHOOK_QUEUE", "screener_submissions"),
			MaxQueue:               utils.GetEnvInt("WEBHOOK_MAX_QUEUE", 10),
			ThrottleRetry:          utils.GetEnvInt("WEBHOOK_THROTTLE_RETRY", 5),
			HTTPTimeoutInSeconds:   utils.GetEnvInt("WEBHOOK_HTTP_TIMEOUT_IN_SECONDS", 10),
			WorkerIntervalInSecond: utils.GetEnvInt("WEBHOOK_WORKER_INTERVAL_IN_SECONDS", 5),
			JWTAlg:                 utils.GetEnvString("WEBHOOK_JWT_ALG", ""),
			JWTHookKey:             utils.GetEnvString("WEBHOOK_JWT_HOOK_KEY", ""),
		},
	}
}

// parseKeyValues turns key=value items into a map, skipping malformed ones.
func parseKeyValues(items []string) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
