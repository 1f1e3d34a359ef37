package exceptions

import (
	"fmt"

	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/screener"
)

var (
	ErrURLParamValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamIDValidation, paramName))
	}
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrTooManyRequests = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusTooManyRequests, constvars.ErrClientTooManyRequests, constvars.ErrClientTooManyRequests)
	}

	// Screener
	ErrScreenerNotFound = func(err error, screenerType, source string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientScreenerNotFound, fmt.Sprintf(constvars.ErrDevScreenerNotFound, screenerType, source))
	}
	ErrScreenerConfiguration = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientScreenerUnavailable, constvars.ErrDevScreenerConfiguration)
	}
	ErrRuleTableConfiguration = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientScreenerUnavailable, constvars.ErrDevRuleTableConfiguration)
	}
	ErrScreenerSourceRead = func(err error, source string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusServiceUnavailable, constvars.ErrClientScreenerUnavailable, fmt.Sprintf(constvars.ErrDevScreenerSourceRead, source))
	}

	// Session
	ErrSessionNotFound = func(err error, sessionID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientSessionNotFound, fmt.Sprintf(constvars.ErrDevSessionNotFound, sessionID))
	}
	ErrSessionLocked = func(err error, sessionID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientSessionBusy, fmt.Sprintf(constvars.ErrDevSessionLocked, sessionID))
	}
	ErrSessionSubmitted = func(err error, sessionID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientSessionSubmitted, fmt.Sprintf(constvars.ErrDevSessionSubmitted, sessionID))
	}
	ErrUnknownQuestion = func(err error, questionID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientUnknownQuestion, fmt.Sprintf(constvars.ErrDevUnknownQuestion, questionID))
	}
	ErrAnswerRejected = func(err error, questionID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientAnswerRejected, fmt.Sprintf(constvars.ErrDevAnswerRejected, questionID))
	}
	ErrSubmissionInvalid = func(errs screener.ValidationErrors) *CustomError {
		return BuildNewCustomError(errs, constvars.StatusUnprocessableEntity, constvars.ErrClientSubmissionInvalid, constvars.ErrDevSubmissionValidation).WithDetails(errs)
	}
	ErrRoutingCompose = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRoutingCompose)
	}

	// Collector transport
	ErrTransportDelivery = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevTransportDelivery)
	}
	ErrTransportStatus = func(statusCode int) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevTransportStatus, statusCode))
	}
	ErrSigningToken = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSigningToken)
	}

	// Redis
	ErrRedisGet = func(err error, redisKey string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGet, redisKey))
	}
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSet)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDelete)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}

	// RabbitMQ
	ErrRabbitMQPublishMessage = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublishMessage, queueName))
	}
	ErrRabbitMQFetchMessage = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQFetchMessage, queueName))
	}

	// Minio
	ErrMinioGetObject = func(err error, objectName, bucketName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusServiceUnavailable, constvars.ErrClientScreenerUnavailable, fmt.Sprintf(constvars.ErrDevMinioGetObject, objectName, bucketName))
	}

	// Mongo DB
	ErrMongoDBFindScreener = func(err error, screenerType string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusServiceUnavailable, constvars.ErrClientScreenerUnavailable, fmt.Sprintf(constvars.ErrDevMongoFindScreener, screenerType))
	}
)
