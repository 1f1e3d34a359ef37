package utils

import (
	"context"
	"io"
	"net/http"

	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// maxRequestBodyBytes bounds every JSON body the API accepts.
const maxRequestBodyBytes = 1 << 20

func GenerateRequestID() string {
	return uuid.NewString()
}

// RequestIDFromContext returns the id stored by the request id middleware,
// or an empty string outside a request.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}

// DecodeJSONBody reads r's body into dst and validates it. An empty body is
// accepted when allowEmpty is set, leaving dst untouched.
func DecodeJSONBody(r *http.Request, dst interface{}, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if len(body) == 0 {
		if allowEmpty {
			return nil
		}
		return exceptions.ErrCannotParseJSON(io.ErrUnexpectedEOF)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if err := ValidateStruct(dst); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	return nil
}
