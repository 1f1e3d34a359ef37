package webhook

import (
	"context"
	"time"

	"screener-service/internal/app/config"
	"screener-service/internal/app/contracts"
	"screener-service/internal/app/models"
	"screener-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

const defaultWorkerInterval = 5 * time.Second

// Worker periodically forwards queued submissions with at-least-once
// semantics. Only one instance drains the queue per tick.
type Worker struct {
	log      *zap.Logger
	locker   contracts.LockerService
	queue    contracts.SubmissionQueue
	sender   contracts.SubmissionSender
	interval time.Duration
	batch    int
	maxRetry int
	stop     chan struct{}
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, queue contracts.SubmissionQueue, sender contracts.SubmissionSender) *Worker {
	interval := time.Duration(cfg.Webhook.WorkerIntervalInSecond) * time.Second
	if interval <= 0 {
		interval = defaultWorkerInterval
	}
	batch := cfg.Webhook.MaxQueue
	if batch <= 0 {
		batch = 1
	}
	maxRetry := cfg.Webhook.ThrottleRetry
	if maxRetry <= 0 {
		maxRetry = 1
	}
	return &Worker{
		log:      log,
		locker:   lockerSvc,
		queue:    queue,
		sender:   sender,
		interval: interval,
		batch:    batch,
		maxRetry: maxRetry,
		stop:     make(chan struct{}),
	}
}

// Start begins the ticker loop and returns a function that halts it and
// waits for the current tick to finish.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(w.interval)
	stopped := make(chan struct{})

	w.log.Info("Submission worker started", zap.Duration("interval", w.interval))

	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case now := <-ticker.C:
				w.runOnce(ctx, now)
			}
		}
	}()

	return func() {
		close(w.stop)
		<-stopped
	}
}

func (w *Worker) runOnce(ctx context.Context, now time.Time) {
	w.log.Debug("Worker.runOnce tick", zap.Time("now", now))

	ttl := w.interval - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.RedisKeyWorkerLock, ttl)
	if err != nil {
		w.log.Warn("Worker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Debug("Worker lock not acquired, another instance is draining the queue")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.RedisKeyWorkerLock, lockVal); err != nil {
			w.log.Error("Worker unlock failed", zap.Error(err))
		}
	}()

	items, err := w.queue.FetchN(ctx, w.batch)
	if err != nil {
		w.log.Error("Worker fetch failed", zap.Error(err))
	}
	if len(items) == 0 {
		return
	}

	w.log.Info("Worker fetched submissions", zap.Int("fetched_count", len(items)))
	for _, item := range items {
		w.processItem(ctx, item)
	}
}

func (w *Worker) processItem(ctx context.Context, item models.QueuedSubmission) {
	msg := item.Message
	status, err := w.sender.Send(ctx, &msg)

	switch {
	case err == nil && successful(status):
		if ackErr := w.queue.Ack(ctx, item.DeliveryTag); ackErr != nil {
			w.log.Warn("Worker ack failed after delivery",
				zap.String(constvars.LoggingMessageIDKey, msg.ID),
				zap.Error(ackErr))
			return
		}
		w.log.Info("Worker delivered submission",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.String(constvars.LoggingFormTypeKey, msg.FormType),
			zap.Int(constvars.LoggingStatusCodeKey, status))

	case authRejected(status):
		// credentials problem on our side; the message itself is fine
		if rqErr := w.queue.Reenqueue(ctx, &msg); rqErr != nil {
			w.log.Error("Worker reenqueue failed",
				zap.String(constvars.LoggingMessageIDKey, msg.ID),
				zap.Int(constvars.LoggingStatusCodeKey, status),
				zap.Error(rqErr))
			w.nack(ctx, item.DeliveryTag, msg.ID)
			return
		}
		w.ack(ctx, item.DeliveryTag, msg.ID)
		w.log.Warn("Collector rejected credentials, submission returned to queue tail",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.Int(constvars.LoggingStatusCodeKey, status),
			zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount))

	default:
		w.retry(ctx, item.DeliveryTag, msg, status, err)
	}
}

func (w *Worker) retry(ctx context.Context, deliveryTag uint64, msg models.SubmissionMessage, status int, cause error) {
	msg.FailedCount++
	fields := []zap.Field{
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.Int(constvars.LoggingStatusCodeKey, status),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
		zap.NamedError("cause", cause),
	}

	if msg.FailedCount >= w.maxRetry {
		if err := w.queue.EnqueueToDeadQueue(ctx, &msg); err != nil {
			w.log.Error("Worker dead queue publish failed", append(fields, zap.Error(err))...)
			w.nack(ctx, deliveryTag, msg.ID)
			return
		}
		w.ack(ctx, deliveryTag, msg.ID)
		w.log.Error("Submission moved to dead queue", fields...)
		return
	}

	if err := w.queue.Reenqueue(ctx, &msg); err != nil {
		w.log.Error("Worker reenqueue failed", append(fields, zap.Error(err))...)
		w.nack(ctx, deliveryTag, msg.ID)
		return
	}
	w.ack(ctx, deliveryTag, msg.ID)
	w.log.Warn("Submission delivery failed, requeued", fields...)
}

func (w *Worker) ack(ctx context.Context, deliveryTag uint64, messageID string) {
	if err := w.queue.Ack(ctx, deliveryTag); err != nil {
		w.log.Warn("Worker ack failed",
			zap.String(constvars.LoggingMessageIDKey, messageID),
			zap.Error(err))
	}
}

// nack returns the original delivery to the queue when its replacement could
// not be published. The failed count of that copy is unchanged.
func (w *Worker) nack(ctx context.Context, deliveryTag uint64, messageID string) {
	if err := w.queue.Nack(ctx, deliveryTag); err != nil {
		w.log.Warn("Worker nack failed",
			zap.String(constvars.LoggingMessageIDKey, messageID),
			zap.Error(err))
	}
}
