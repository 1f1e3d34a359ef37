package constvars

type ContextKey string

const (
	ResourceScreeners = "screeners"
	ResourceSessions  = "sessions"
)

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_SESSION_ID_KEY           ContextKey = "screener_session_id"
)

const (
	ScreenerSourceFile  = "file"
	ScreenerSourceMinio = "minio"
	ScreenerSourceMongo = "mongo"
)

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

const (
	SubmissionDeliveryQueue  = "queue"
	SubmissionDeliveryDirect = "direct"
)

const (
	RedisKeySessionFormat     = "screener:session:%s"
	RedisKeySessionLockFormat = "screener:session:%s:lock"
	RedisKeyWorkerLock        = "screener:submission:worker:lock"
	RedisKeyRateLimitFormat   = "screener:ratelimit:%s:%s:%d"
)

const LimiterGroupSessionCreate = "session-create"

const (
	URLParamScreenerType = "screenerType"
	URLParamSessionID    = "sessionID"
)
