package booking

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	bookingRepo "unilink/database/repository/booking"
	"unilink/models"
	"unilink/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePendingBooking stores an unpaid booking request.
func (s *DefaultBookingService) CreatePendingBooking(ctx context.Context, req models.PendingBookingRequest) (*models.Booking, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.Validate.Struct(req); err != nil {
		return nil, pendingValidationError(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to create booking", err)
	}
	b := models.Booking{
		ID:           id.String(),
		Email:        strings.ToLower(req.Email),
		HomeLocation: req.HomeLocation,
		Destination:  req.Destination,
		Route:        req.HomeLocation + "-" + req.Destination,
		Status:       models.BookingPending,
		CreatedAt:    s.now().UTC(),
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	stored, err := s.Repo.Create(ctx, b)
	if err != nil {
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to create booking", err)
	}
	return stored, nil
}

// ListBookings returns every booking, oldest first. Read failures yield an
// empty list so the admin page still renders.
func (s *DefaultBookingService) ListBookings(ctx context.Context) []models.Booking {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	bookings, err := s.Repo.List(ctx)
	if err != nil {
		s.logger().Warn("Failed to read bookings", zap.Error(err))
		return []models.Booking{}
	}
	return bookings
}

func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return utils.NotFoundError("Booking not found")
		}
		return utils.WrapAppError(utils.KindInternal, "Failed to delete booking", err)
	}
	s.logger().Info("Booking deleted", zap.String("bookingId", id))
	return nil
}

func (s *DefaultBookingService) ClearBookings(ctx context.Context) (int64, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	n, err := s.Repo.Clear(ctx)
	if err != nil {
		return 0, utils.WrapAppError(utils.KindInternal, "Failed to delete booking", err)
	}
	s.logger().Warn("All bookings cleared", zap.Int64("count", n))
	return n, nil
}

// pendingValidationError reports missing fields before malformed ones.
func pendingValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return utils.ValidationError("Email, home location, and destination are required")
	}
	tags := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		tags[fe.Tag()] = true
	}
	switch {
	case tags["required"]:
		return utils.ValidationError("Email, home location, and destination are required")
	case tags["mailbox"]:
		return utils.ValidationError("Invalid email format")
	default:
		return utils.ValidationError("Home location and destination must be different")
	}
}

func (s *DefaultBookingService) tripLocation() *time.Location {
	if s.Trip.Location == nil {
		return time.UTC
	}
	return s.Trip.Location
}

var csvHeader = []string{"Name", "Email", "Route", "Round Trip", "Last Minute", "Referred By", "Luggage", "Status", "Booked"}

// ExportCSV writes the bookings, optionally only those on route, as CSV.
func (s *DefaultBookingService) ExportCSV(ctx context.Context, w io.Writer, route string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	bookings, err := s.Repo.List(ctx)
	if err != nil {
		return utils.WrapAppError(utils.KindInternal, "Failed to read bookings", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bookings {
		if route != "" && b.Route != route {
			continue
		}
		row := []string{
			b.Name,
			b.Email,
			CampusName(b.HomeLocation) + " → " + CampusName(b.Destination),
			yesNo(b.RoundTrip),
			yesNo(b.LastMinuteFee),
			deref(b.ReferrerName),
			yesNo(b.AddLuggage),
			b.Status,
			b.CreatedAt.In(s.tripLocation()).Format("2006-01-02 15:04"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
