package contracts

import (
	"context"

	"screener-service/internal/app/models"
)

// SubmissionPublisher hands a submission over for delivery to the collector.
type SubmissionPublisher interface {
	Publish(ctx context.Context, msg *models.SubmissionMessage) error
}

// SubmissionQueue is the durable queue drained by the delivery worker.
type SubmissionQueue interface {
	SubmissionPublisher
	Reenqueue(ctx context.Context, msg *models.SubmissionMessage) error
	EnqueueToDeadQueue(ctx context.Context, msg *models.SubmissionMessage) error
	FetchN(ctx context.Context, max int) ([]models.QueuedSubmission, error)
	Ack(ctx context.Context, deliveryTag uint64) error
	// Nack returns a fetched delivery to the queue untouched.
	Nack(ctx context.Context, deliveryTag uint64) error
}

// SubmissionSender POSTs one submission to the collector and reports the
// response status.
type SubmissionSender interface {
	Send(ctx context.Context, msg *models.SubmissionMessage) (int, error)
}
