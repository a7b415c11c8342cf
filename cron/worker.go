package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"unilink/config"
	"unilink/models"
	"unilink/services/notification"
	"unilink/services/tasks"
	"unilink/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt points asynq at the queue DB, sharing the store's
// connection settings.
func QueueRedisOpt(cfg *config.Config) (asynq.RedisClientOpt, error) {
	opts, err := utils.RedisOptions(cfg, cfg.RedisQueueDB)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// queueServer is the part of *asynq.Server the worker drives.
type queueServer interface {
	Ping() error
	Start(handler asynq.Handler) error
	Shutdown()
}

// EmailWorker drains the email queue.
type EmailWorker struct {
	srv     queueServer
	mux     *asynq.ServeMux
	logger  *zap.Logger
	backoff time.Duration
}

func NewEmailWorker(redisOpt asynq.RedisClientOpt, sender notification.EmailSender, logger *zap.Logger) *EmailWorker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				logger.Warn("Email task failed",
					zap.String("type", task.Type()),
					zap.Int("retried", retried),
					zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWelcomeEmail, HandleWelcomeEmail(sender, logger))
	mux.HandleFunc(tasks.TypeBookingConfirmedEmail, HandleBookingConfirmedEmail(sender, logger))

	return &EmailWorker{srv: srv, mux: mux, logger: logger, backoff: 2 * time.Second}
}

// Run waits for the queue's Redis to answer, starts the worker and blocks
// until ctx is done. Start itself does not dial Redis, so reachability is
// checked with Ping under a linear backoff first.
func (w *EmailWorker) Run(ctx context.Context) error {
	const maxAttempts = 5

	for attempt := 1; ; attempt++ {
		err := w.srv.Ping()
		if err == nil {
			break
		}
		w.logger.Warn("Email queue unreachable", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == maxAttempts {
			return fmt.Errorf("email worker: queue unreachable: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(attempt) * w.backoff):
		}
	}

	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("email worker: %w", err)
	}

	w.logger.Info("Email worker started")
	<-ctx.Done()
	w.srv.Shutdown()
	w.logger.Info("Email worker stopped")
	return nil
}

// HandleWelcomeEmail delivers a queued waitlist welcome email.
func HandleWelcomeEmail(sender notification.EmailSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.WelcomeEmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid welcome email payload", zap.Error(err))
			return fmt.Errorf("decode %s: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		return sender.SendWelcome(ctx, p)
	}
}

// HandleBookingConfirmedEmail delivers a queued booking confirmation.
func HandleBookingConfirmedEmail(sender notification.EmailSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingEmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid booking email payload", zap.Error(err))
			return fmt.Errorf("decode %s: %v: %w", task.Type(), err, asynq.SkipRetry)
		}
		logger.Info("Sending booking confirmation", zap.String("bookingId", p.Booking.ID))
		return sender.SendBookingConfirmation(ctx, p)
	}
}
