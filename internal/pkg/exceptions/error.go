package exceptions

import (
	"errors"
	"fmt"
	"runtime"

	"screener-service/internal/pkg/constvars"
)

type CustomError struct {
	StatusCode    int         `json:"status_code"`
	Success       bool        `json:"success"`
	ClientMessage string      `json:"message"`
	Details       interface{} `json:"details,omitempty"`
	DevMessage    string      `json:"-"`
	Location      Location    `json:"-"`
	err           error
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.err
}

// WithDetails attaches a client-visible payload, e.g. a list of failed fields.
func (e *CustomError) WithDetails(details interface{}) *CustomError {
	e.Details = details
	return e
}

func WrapWithoutError(statusCode int, clientMessage, devMessage string) *CustomError {
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Location:      getLocation(2),
	}
}

func WrapWithError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return newCustomError(err, statusCode, clientMessage, devMessage, 3)
}

// BuildNewCustomError wraps err, or builds an error without a cause when err is nil.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	return newCustomError(err, statusCode, clientMessage, devMessage, 4)
}

func newCustomError(err error, statusCode int, clientMessage, devMessage string, skip int) *CustomError {
	ce := &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Location:      getLocation(skip),
		err:           err,
	}
	if err != nil {
		ce.DevMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return ce
}

// AsCustomError returns err as a *CustomError, wrapping unknown errors as 500s.
func AsCustomError(err error) *CustomError {
	if err == nil {
		return nil
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return newCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrClientCannotProcessRequest, 3)
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{File: "unknown", FunctionName: "unknown"}
	}
	return Location{
		File:         file,
		Line:         line,
		FunctionName: runtime.FuncForPC(pc).Name(),
	}
}
