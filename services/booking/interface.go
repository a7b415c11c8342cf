package booking

import (
	"context"
	"io"
	"time"

	bookingRepo "unilink/database/repository/booking"
	"unilink/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// BookingService is the booking, pricing and capacity surface.
type BookingService interface {
	// Pricing & capacity
	Quote(tripType models.TripType, addLuggage bool) models.Quote
	Capacity(ctx context.Context) models.Capacity

	// Paid flow
	CreateCheckout(ctx context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutResponse, error)
	ConfirmBooking(ctx context.Context, sessionID string) (*models.ConfirmResult, error)

	// Unpaid pending path
	CreatePendingBooking(ctx context.Context, req models.PendingBookingRequest) (*models.Booking, error)

	// Admin
	ListBookings(ctx context.Context) []models.Booking
	DeleteBooking(ctx context.Context, id string) error
	ClearBookings(ctx context.Context) (int64, error)
	ExportCSV(ctx context.Context, w io.Writer, route string) error
	WriteTicket(ctx context.Context, w io.Writer, sessionID string) error
}

// EmailQueue hands confirmation emails to the background worker.
type EmailQueue interface {
	EnqueueBookingConfirmation(ctx context.Context, b models.Booking) error
}

// EventPublisher announces confirmed bookings to other systems.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, b models.Booking) error
}

// DefaultBookingService is the production implementation. Payments is nil
// when no Stripe key is configured; the paid flow then reports a
// configuration error.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Payments     PaymentProvider
	Emails       EmailQueue
	Events       EventPublisher
	Pricer       Pricer
	Trip         Trip
	TicketLimit  int
	StoreTimeout time.Duration
	Validate     *validator.Validate
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// storeCtx bounds a single store call.
func (s *DefaultBookingService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
