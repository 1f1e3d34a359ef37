package constvars

// Validation messages for request payloads, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "must contain at least %s items",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of %s",
	"url":      "must be a valid URL",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientScreenerNotFound              = "the requested screener does not exist"
	ErrClientScreenerUnavailable           = "the screener is not available right now"
	ErrClientSessionNotFound               = "your screening session has expired, please start again"
	ErrClientSessionBusy                   = "your previous answer is still being processed, please retry"
	ErrClientSessionSubmitted              = "this screening has already been submitted"
	ErrClientAnswerRejected                = "the answer is not one of the offered options"
	ErrClientUnknownQuestion               = "the question does not belong to this screener"
	ErrClientSubmissionInvalid             = "some answers are missing or invalid"
	ErrClientTooManyRequests               = "too many requests, please slow down"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevCannotParseJSON          = "cannot parse JSON"
	ErrDevCannotMarshalJSON        = "cannot marshal JSON"
	ErrDevServerDeadlineExceeded   = "server deadline exceeded"
	ErrDevValidationFailed         = "validation failed"
	ErrDevURLParamIDValidation     = "invalid url param %s"
	ErrDevScreenerNotFound         = "screener %s not found in %s source"
	ErrDevScreenerConfiguration    = "screener configuration error"
	ErrDevRuleTableConfiguration   = "rule table configuration error"
	ErrDevScreenerSourceRead       = "failed to read screener from %s source"
	ErrDevSessionNotFound          = "screener session %s not found"
	ErrDevSessionLocked            = "screener session %s is locked by another pass"
	ErrDevSessionSubmitted         = "screener session %s is already submitted"
	ErrDevAnswerRejected           = "answer rejected for question %s"
	ErrDevUnknownQuestion          = "question %s is not part of the screener"
	ErrDevSubmissionValidation     = "submission failed field validation"
	ErrDevTransportDelivery        = "failed to deliver submission to collector"
	ErrDevTransportStatus          = "collector responded with status %d"
	ErrDevRoutingCompose           = "failed to compose redirect"
	ErrDevRedisSet                 = "failed to set value in redis"
	ErrDevRedisGet                 = "failed to get value %s from redis"
	ErrDevRedisDelete              = "failed to delete value in redis"
	ErrDevRedisUnlock              = "failed to release redis lock"
	ErrDevRabbitMQPublishMessage   = "failed to publish message to %s"
	ErrDevRabbitMQFetchMessage     = "failed to fetch message from %s"
	ErrDevMinioGetObject           = "failed to get object %s from bucket %s"
	ErrDevMongoFindScreener        = "failed to find screener document %s"
	ErrDevSigningToken             = "failed to sign collector token"
)
