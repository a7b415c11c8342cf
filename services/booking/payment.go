package booking

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// PaymentStatusPaid is the only session payment status that confirms a booking.
const PaymentStatusPaid = "paid"

// LineItem is one priced line on a checkout session.
type LineItem struct {
	Name        string
	Description string
	AmountCents int64
}

// CheckoutSessionParams describes the hosted checkout to create.
type CheckoutSessionParams struct {
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the provider's view of a checkout.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

// PaymentProvider creates and retrieves hosted checkout sessions.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}

// StripePaymentProvider talks to Stripe Checkout through a per-instance
// client, so the secret key is never stored in a package global.
type StripePaymentProvider struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripePaymentProvider returns a provider using secretKey. backends may
// be nil to use Stripe's default endpoints.
func NewStripePaymentProvider(secretKey string, backends *stripe.Backends, logger *zap.Logger) *StripePaymentProvider {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripePaymentProvider{api: api, logger: logger}
}

func (p *StripePaymentProvider) CreateCheckoutSession(ctx context.Context, in CheckoutSessionParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		CustomerEmail:      stripe.String(in.CustomerEmail),
	}
	params.Context = ctx
	for _, item := range in.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(in.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(item.Description),
				},
				UnitAmount: stripe.Int64(item.AmountCents),
			},
			Quantity: stripe.Int64(1),
		})
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	p.logger.Info("Created checkout session", zap.String("sessionId", s.ID))
	return fromStripe(s), nil
}

func (p *StripePaymentProvider) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, stripeError(err)
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) *CheckoutSession {
	return &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      s.Metadata,
	}
}

// stripeError keeps only Stripe's human-readable message.
func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}
