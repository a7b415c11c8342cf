package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"unilink/models"

	"github.com/hibiken/asynq"
)

const (
	TypeWelcomeEmail          = "email:welcome"
	TypeBookingConfirmedEmail = "email:booking_confirmed"

	// EmailMaxRetry bounds redelivery of a failed email.
	EmailMaxRetry = 3
)

func NewWelcomeEmailTask(payload models.WelcomeEmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWelcomeEmail, b, asynq.MaxRetry(EmailMaxRetry)), nil
}

func NewBookingConfirmedEmailTask(payload models.BookingEmailPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingConfirmedEmail, b, asynq.MaxRetry(EmailMaxRetry)), nil
}

// TaskClient is the part of *asynq.Client the enqueuer uses.
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer puts email tasks on the queue for the worker to deliver.
type Enqueuer struct {
	Client TaskClient
}

func NewEnqueuer(client TaskClient) *Enqueuer {
	return &Enqueuer{Client: client}
}

func (e *Enqueuer) EnqueueWelcome(ctx context.Context, p models.WelcomeEmailPayload) error {
	task, err := NewWelcomeEmailTask(p)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) EnqueueBookingConfirmation(ctx context.Context, b models.Booking) error {
	task, err := NewBookingConfirmedEmailTask(models.BookingEmailPayload{Booking: b})
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task) error {
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}
