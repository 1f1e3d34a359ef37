package webhook

import (
	"context"
	"time"

	"screener-service/internal/app/contracts"
	"screener-service/internal/app/models"
	"screener-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// DirectSender delivers submissions straight to the collector when no queue
// is configured. There is no retry; failures are logged and returned.
type DirectSender struct {
	log     *zap.Logger
	sender  contracts.SubmissionSender
	timeout time.Duration
}

func NewDirectSender(log *zap.Logger, sender contracts.SubmissionSender, timeout time.Duration) *DirectSender {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &DirectSender{log: log, sender: sender, timeout: timeout}
}

// Publish sends msg with its own timeout, detached from the caller's
// cancellation.
func (d *DirectSender) Publish(ctx context.Context, msg *models.SubmissionMessage) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	status, err := d.sender.Send(ctx, msg)
	if err != nil {
		d.log.Error("DirectSender.Publish delivery failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.Int(constvars.LoggingStatusCodeKey, status),
			zap.Error(err),
		)
		return err
	}

	d.log.Info("DirectSender.Publish delivered",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.Int(constvars.LoggingStatusCodeKey, status),
	)
	return nil
}
