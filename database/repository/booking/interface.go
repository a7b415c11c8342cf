package bookingRepo

import (
	"context"
	"errors"

	"unilink/models"
)

// ErrNotFound is returned when no booking matches.
var ErrNotFound = errors.New("booking not found")

// BookingRepository stores one record per booking.
type BookingRepository interface {
	// CreateIfAbsent inserts b unless a booking with the same StripeSessionID
	// exists, in which case that booking is returned with created=false.
	CreateIfAbsent(ctx context.Context, b models.Booking) (*models.Booking, bool, error)
	// Create inserts b unconditionally. Used by the unpaid pending path.
	Create(ctx context.Context, b models.Booking) (*models.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error)
	// List returns every booking, oldest first.
	List(ctx context.Context) ([]models.Booking, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}
