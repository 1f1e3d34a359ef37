package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingDataKey               = "data"
	LoggingRequestKey            = "request"
	LoggingResponseKey           = "response"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingErrorTypeKey          = "error_type"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingScreenerTypeKey       = "screener_type"
	LoggingScreenerSourceKey     = "screener_source"
	LoggingSessionIDKey          = "session_id"
	LoggingQuestionIDKey         = "question_id"
	LoggingOutcomeKey            = "routing_outcome"
	LoggingRuleIDKey             = "routing_rule"
	LoggingClearedKey            = "cleared_questions"
	LoggingMessageIDKey          = "message_id"
	LoggingFormTypeKey           = "form_type"
	LoggingFailedCountKey        = "failed_count"
	LoggingQueueNameKey          = "queue_name"
	LoggingFileNameKey           = "file_name"
	LoggingOperationKey          = "operation"
	LoggingBusinessEventKey      = "business_event"
)
