package booking

import (
	"context"
	"strings"

	"unilink/models"
	"unilink/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmBooking turns a paid checkout session into a booking. Confirming
// the same session twice returns the first booking with Created=false.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, sessionID string) (*models.ConfirmResult, error) {
	if s.Payments == nil {
		return nil, utils.NewAppError(utils.KindConfiguration, paymentNotConfigured)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, utils.NewAppError(utils.KindInvalidRequest, "Session ID is required")
	}

	session, err := s.Payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, utils.WrapPublicAppError(utils.KindInternal, "Failed to confirm booking", err)
	}
	if session.PaymentStatus != PaymentStatusPaid {
		return nil, utils.NewAppError(utils.KindPaymentNotCompleted, "Payment was not completed")
	}

	b, err := s.bookingFromSession(sessionID, session)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	stored, created, err := s.Repo.CreateIfAbsent(storeCtx, *b)
	if err != nil {
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to confirm booking", err)
	}

	if created {
		s.logger().Info("Booking confirmed",
			zap.String("bookingId", stored.ID),
			zap.String("sessionId", sessionID),
			zap.Int64("amountTotal", stored.AmountTotal),
		)
		s.afterConfirm(ctx, *stored)
	}
	return &models.ConfirmResult{Booking: stored, Created: created}, nil
}

func (s *DefaultBookingService) bookingFromSession(sessionID string, session *CheckoutSession) (*models.Booking, error) {
	md := session.Metadata
	email := md[metaEmail]
	home, dest, route := md[metaHomeLocation], md[metaDestination], md[metaRoute]
	if email == "" || (home == "" && dest == "" && route == "") {
		return nil, utils.NewAppError(utils.KindInvalidSession, "Invalid session data")
	}

	if routeHome, routeDest, ok := SplitRoute(route); ok {
		if home == "" {
			home = routeHome
		}
		if dest == "" {
			dest = routeDest
		}
	}
	if route == "" {
		route = home + "-" + dest
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to confirm booking", err)
	}

	return &models.Booking{
		ID:              id.String(),
		StripeSessionID: sessionID,
		Name:            md[metaName],
		Email:           strings.ToLower(email),
		Phone:           optional(md[metaPhone]),
		HomeLocation:    home,
		Destination:     dest,
		Route:           route,
		RoundTrip:       md[metaRoundTrip] == "true",
		ReturnOnly:      md[metaReturnOnly] == "true",
		AddLuggage:      md[metaAddLuggage] == "true",
		ReferrerName:    optional(md[metaReferrerName]),
		LastMinuteFee:   md[metaLastMinute] == "true",
		TripDeparture:   s.Trip.DepartureWall(),
		TripReturn:      s.Trip.ReturnWall(),
		AmountTotal:     session.AmountTotal,
		Status:          models.BookingConfirmed,
		CreatedAt:       s.now().UTC(),
	}, nil
}

// afterConfirm runs the best-effort side effects of a new booking. Their
// failures are logged and never reach the caller.
func (s *DefaultBookingService) afterConfirm(ctx context.Context, b models.Booking) {
	if s.Emails != nil {
		if err := s.Emails.EnqueueBookingConfirmation(ctx, b); err != nil {
			s.logger().Error("Failed to queue confirmation email", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishBookingConfirmed(ctx, b); err != nil {
			s.logger().Error("Failed to publish booking event", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
