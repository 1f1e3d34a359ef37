package webhook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/app/models"
	"screener-service/internal/app/services/shared/jwtmanager"
	"screener-service/internal/pkg/constvars"
	"screener-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	// responseDrainLimit caps how much of a collector response is read
	// before the connection is released.
	responseDrainLimit = 64 << 10
)

var errCollectorURLMissing = errors.New("collector url is not configured")

// TokenSigner issues the bearer token attached to collector requests.
type TokenSigner interface {
	CreateToken(ctx context.Context, in *jwtmanager.CreateTokenInput) (*jwtmanager.CreateTokenOutput, error)
}

// HTTPSender POSTs submission bodies to the collector URL.
type HTTPSender struct {
	log    *zap.Logger
	url    string
	signer TokenSigner
	client *http.Client
}

// NewHTTPSender builds a sender from the webhook config. signer may be nil,
// in which case requests carry no Authorization header.
func NewHTTPSender(cfg *config.InternalConfig, signer TokenSigner, log *zap.Logger) *HTTPSender {
	timeout := time.Duration(cfg.Webhook.HTTPTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPSender{
		log:    log,
		url:    strings.TrimSpace(cfg.Webhook.URL),
		signer: signer,
		client: &http.Client{Timeout: timeout},
	}
}

// Send returns the collector status code. A transport failure returns an
// ErrTransportDelivery with a zero status.
func (s *HTTPSender) Send(ctx context.Context, msg *models.SubmissionMessage) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("HTTPSender.Send called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.String(constvars.LoggingFormTypeKey, msg.FormType),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
	)

	if s.url == "" {
		return 0, exceptions.ErrTransportDelivery(errCollectorURLMissing)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, s.url, bytes.NewReader(msg.Body))
	if err != nil {
		return 0, exceptions.ErrTransportDelivery(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderIdempotencyKey, msg.ID)
	if requestID != "" {
		req.Header.Set(constvars.HeaderXRequestID, requestID)
	}

	if s.signer != nil {
		token, err := s.signer.CreateToken(ctx, &jwtmanager.CreateTokenInput{
			Subject:   msg.ScreenerType,
			MessageID: msg.ID,
			FormType:  msg.FormType,
			SessionID: msg.SessionID,
		})
		if err != nil {
			return 0, err
		}
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, exceptions.ErrTransportDelivery(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseDrainLimit))

	s.log.Info("HTTPSender.Send response received",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
	)

	if !successful(resp.StatusCode) {
		return resp.StatusCode, exceptions.ErrTransportStatus(resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

func authRejected(status int) bool {
	return status == constvars.StatusUnauthorized || status == constvars.StatusForbidden
}
