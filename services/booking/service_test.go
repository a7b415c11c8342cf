package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "unilink/database/repository/booking"
	"unilink/models"
	"unilink/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayments struct {
	mu       sync.Mutex
	created  []CheckoutSessionParams
	sessions map[string]*CheckoutSession
	err      error
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, p CheckoutSessionParams) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakePayments) GetCheckoutSession(_ context.Context, id string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("No such checkout.session: " + id)
	}
	return s, nil
}

type recordingQueue struct {
	mu       sync.Mutex
	bookings []models.Booking
	err      error
}

func (q *recordingQueue) EnqueueBookingConfirmation(_ context.Context, b models.Booking) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.bookings = append(q.bookings, b)
	return q.err
}

func (q *recordingQueue) PublishBookingConfirmed(ctx context.Context, b models.Booking) error {
	return q.EnqueueBookingConfirmation(ctx, b)
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.bookings)
}

// failingRepo fails every call, as an unreachable store would.
type failingRepo struct{ bookingRepo.BookingRepository }

var errStoreDown = errors.New("dial tcp: connection refused")

func (failingRepo) Count(context.Context) (int, error) { return 0, errStoreDown }

func (failingRepo) List(context.Context) ([]models.Booking, error) { return nil, errStoreDown }

func (failingRepo) CreateIfAbsent(context.Context, models.Booking) (*models.Booking, bool, error) {
	return nil, false, errStoreDown
}

type testEnv struct {
	svc      *DefaultBookingService
	repo     *bookingRepo.RedisBookingRepo
	payments *fakePayments
	emails   *recordingQueue
	events   *recordingQueue
	now      time.Time
	seeded   int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	trip := testTrip(t)
	env := &testEnv{
		repo:     bookingRepo.NewRedisBookingRepo(client),
		payments: &fakePayments{sessions: map[string]*CheckoutSession{}},
		emails:   &recordingQueue{},
		events:   &recordingQueue{},
		now:      trip.Departure.Add(-72 * time.Hour),
	}
	env.svc = &DefaultBookingService{
		Repo:         env.repo,
		Payments:     env.payments,
		Emails:       env.emails,
		Events:       env.events,
		Pricer:       NewPricer(testConfig(), trip),
		Trip:         trip,
		TicketLimit:  3,
		StoreTimeout: time.Second,
		Validate:     utils.NewValidator(),
		Logger:       zap.NewNop(),
		Now:          func() time.Time { return env.now },
	}
	return env
}

func (e *testEnv) seed(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e.seeded++
		_, err := e.repo.Create(context.Background(), models.Booking{
			ID:        fmt.Sprintf("seed-%d", e.seeded),
			Email:     "seed@purdue.edu",
			Status:    models.BookingConfirmed,
			CreatedAt: e.now.Add(time.Duration(e.seeded) * time.Second),
		})
		require.NoError(t, err)
	}
}

func paidSession(id string, md map[string]string) *CheckoutSession {
	return &CheckoutSession{ID: id, PaymentStatus: PaymentStatusPaid, AmountTotal: 3750, Metadata: md}
}

func validMetadata() map[string]string {
	return map[string]string{
		"name":         "Ada Lovelace",
		"email":        "ada@purdue.edu",
		"phone":        "",
		"route":        "purdue-uiuc",
		"homeLocation": "purdue",
		"destination":  "uiuc",
		"roundTrip":    "false",
		"returnOnly":   "false",
		"referrerName": "Grace",
		"addLuggage":   "true",
		"lastMinute":   "false",
	}
}
