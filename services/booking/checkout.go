package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"unilink/models"
	"unilink/utils"

	"go.uber.org/zap"
)

const paymentNotConfigured = "Payment is not configured. Set STRIPE_SECRET_KEY and restart the server."

// Metadata keys carried on the checkout session. Nothing is stored locally
// until the payment is confirmed, so the session is the only copy.
const (
	metaName         = "name"
	metaEmail        = "email"
	metaPhone        = "phone"
	metaRoute        = "route"
	metaHomeLocation = "homeLocation"
	metaDestination  = "destination"
	metaRoundTrip    = "roundTrip"
	metaReturnOnly   = "returnOnly"
	metaReferrerName = "referrerName"
	metaAddLuggage   = "addLuggage"
	metaLastMinute   = "lastMinute"
)

// CreateCheckout validates req, checks capacity and opens a hosted
// checkout. It returns the URL the client must be sent to.
func (s *DefaultBookingService) CreateCheckout(ctx context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutResponse, error) {
	if s.Payments == nil {
		return nil, utils.NewAppError(utils.KindConfiguration, paymentNotConfigured)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.ReferrerName = strings.TrimSpace(req.ReferrerName)
	req.Route = strings.TrimSpace(req.Route)
	if req.Route == "" {
		req.Route = s.Trip.Route
	}
	if err := s.validateCheckout(req); err != nil {
		return nil, err
	}

	if c, err := s.capacity(ctx); err != nil {
		s.logger().Warn("Capacity check failed, allowing checkout", zap.Error(err))
	} else if c.SoldOut {
		return nil, utils.NewAppError(utils.KindCapacity,
			fmt.Sprintf("Sold out. All %d tickets have been sold.", c.Limit))
	}

	tripType := models.TripTypeFromFlags(req.RoundTrip, req.ReturnOnly)
	quote := s.Pricer.Quote(tripType, req.AddLuggage, s.now())

	session, err := s.Payments.CreateCheckoutSession(ctx, CheckoutSessionParams{
		CustomerEmail: req.Email,
		Currency:      s.Pricer.Prices.Currency,
		LineItems:     s.Pricer.LineItems(quote, s.Trip),
		SuccessURL:    origin + "/booking/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     origin + "/booking?cancelled=1",
		Metadata:      s.checkoutMetadata(req, quote),
	})
	if err != nil {
		return nil, utils.WrapPublicAppError(utils.KindInternal, "Failed to create checkout", err)
	}

	s.logger().Info("Checkout started",
		zap.String("sessionId", session.ID),
		zap.String("tripType", string(tripType)),
		zap.Int64("totalCents", quote.TotalCents),
		zap.Bool("lastMinute", quote.LastMinute()),
	)
	return &models.CheckoutResponse{URL: session.URL}, nil
}

func (s *DefaultBookingService) validateCheckout(req models.CheckoutRequest) error {
	if req.Name == "" || req.Email == "" {
		return utils.ValidationError("Name and email are required")
	}
	if req.Route != s.Trip.Route {
		return utils.ValidationError(fmt.Sprintf("Invalid route. Only %s is available.", s.Trip.DisplayRoute()))
	}
	if err := s.Validate.Struct(req); err != nil {
		if fe, ok := utils.FirstFieldError(err); ok && fe.Tag() == "mailbox" {
			return utils.ValidationError("Invalid email format")
		}
		return utils.ValidationError("Name and email are required")
	}
	return nil
}

func (s *DefaultBookingService) checkoutMetadata(req models.CheckoutRequest, q models.Quote) map[string]string {
	return map[string]string{
		metaName:         req.Name,
		metaEmail:        strings.ToLower(req.Email),
		metaPhone:        req.Phone,
		metaRoute:        req.Route,
		metaHomeLocation: s.Trip.HomeLocation,
		metaDestination:  s.Trip.Destination,
		metaRoundTrip:    strconv.FormatBool(req.RoundTrip && !req.ReturnOnly),
		metaReturnOnly:   strconv.FormatBool(req.ReturnOnly),
		metaReferrerName: req.ReferrerName,
		metaAddLuggage:   strconv.FormatBool(req.AddLuggage),
		metaLastMinute:   strconv.FormatBool(q.LastMinute()),
	}
}
