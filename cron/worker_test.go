package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"unilink/config"
	"unilink/models"
	"unilink/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	welcome  []models.WelcomeEmailPayload
	bookings []models.BookingEmailPayload
	err      error
}

func (r *recordingSender) SendWelcome(_ context.Context, p models.WelcomeEmailPayload) error {
	r.welcome = append(r.welcome, p)
	return r.err
}

func (r *recordingSender) SendBookingConfirmation(_ context.Context, p models.BookingEmailPayload) error {
	r.bookings = append(r.bookings, p)
	return r.err
}

func TestHandleWelcomeEmail(t *testing.T) {
	sender := &recordingSender{}
	p := models.WelcomeEmailPayload{Email: "ada@purdue.edu", School: "purdue", Destination: "iu"}
	task, err := tasks.NewWelcomeEmailTask(p)
	require.NoError(t, err)

	require.NoError(t, HandleWelcomeEmail(sender, zap.NewNop())(context.Background(), task))
	assert.Equal(t, []models.WelcomeEmailPayload{p}, sender.welcome)
}

func TestHandleBookingConfirmedEmail_SenderErrorIsRetried(t *testing.T) {
	sender := &recordingSender{err: errors.New("resend: 503")}
	task, err := tasks.NewBookingConfirmedEmailTask(models.BookingEmailPayload{Booking: models.Booking{ID: "b-1"}})
	require.NoError(t, err)

	err = HandleBookingConfirmedEmail(sender, zap.NewNop())(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	require.Len(t, sender.bookings, 1)
	assert.Equal(t, "b-1", sender.bookings[0].Booking.ID)
}

func TestHandlers_BadPayloadSkipsRetry(t *testing.T) {
	sender := &recordingSender{}
	bad := asynq.NewTask(tasks.TypeWelcomeEmail, []byte("{not json"))

	err := HandleWelcomeEmail(sender, zap.NewNop())(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = HandleBookingConfirmedEmail(sender, zap.NewNop())(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, sender.welcome)
}

type fakeQueueServer struct {
	pingErrs  []error
	pings     int
	started   bool
	stopped   bool
	onStarted func()
}

func (f *fakeQueueServer) Ping() error {
	f.pings++
	if len(f.pingErrs) == 0 {
		return nil
	}
	err := f.pingErrs[0]
	f.pingErrs = f.pingErrs[1:]
	return err
}

func (f *fakeQueueServer) Start(asynq.Handler) error {
	f.started = true
	if f.onStarted != nil {
		f.onStarted()
	}
	return nil
}

func (f *fakeQueueServer) Shutdown() { f.stopped = true }

func TestEmailWorkerRun_WaitsForQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	down := errors.New("dial tcp: connection refused")
	srv := &fakeQueueServer{pingErrs: []error{down, down}, onStarted: cancel}
	w := &EmailWorker{srv: srv, mux: asynq.NewServeMux(), logger: zap.NewNop(), backoff: time.Millisecond}

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 3, srv.pings)
	assert.True(t, srv.started)
	assert.True(t, srv.stopped)
}

func TestEmailWorkerRun_GivesUpWhenQueueStaysDown(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	srv := &fakeQueueServer{pingErrs: []error{down, down, down, down, down}}
	w := &EmailWorker{srv: srv, mux: asynq.NewServeMux(), logger: zap.NewNop(), backoff: time.Millisecond}

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Equal(t, 5, srv.pings)
	assert.False(t, srv.started)
}

func TestQueueRedisOpt(t *testing.T) {
	opt, err := QueueRedisOpt(&config.Config{RedisAddr: "localhost:6379", RedisPassword: "pw", RedisQueueDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)

	opt, err = QueueRedisOpt(&config.Config{RedisURL: "redis://:secret@cache:6380/0", RedisQueueDB: 3})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, 3, opt.DB)
}
