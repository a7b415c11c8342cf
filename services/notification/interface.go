package notification

import (
	"context"
	"fmt"

	"unilink/config"
	"unilink/models"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// DefaultFromAddress is used when FROM_EMAIL is unset.
const DefaultFromAddress = "UniLink <onboarding@resend.dev>"

// EmailSender delivers the transactional emails.
type EmailSender interface {
	SendWelcome(ctx context.Context, p models.WelcomeEmailPayload) error
	SendBookingConfirmation(ctx context.Context, p models.BookingEmailPayload) error
}

// emailAPI is the slice of the Resend client the sender needs.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender sends email through Resend. With no API key it logs and
// skips every send.
type ResendSender struct {
	emails  emailAPI
	from    string
	siteURL string
	logger  *zap.Logger
}

func NewResendSender(cfg *config.Config, logger *zap.Logger) *ResendSender {
	s := &ResendSender{
		from:    cfg.FromEmail,
		siteURL: cfg.PublicSiteURL,
		logger:  logger,
	}
	if s.from == "" {
		s.from = DefaultFromAddress
	}
	if cfg.ResendAPIKey != "" {
		s.emails = resend.NewClient(cfg.ResendAPIKey).Emails
	} else {
		logger.Warn("RESEND_API_KEY not set; emails will be skipped")
	}
	return s
}

func (s *ResendSender) SendWelcome(ctx context.Context, p models.WelcomeEmailPayload) error {
	body, err := renderWelcome(p, s.siteURL)
	if err != nil {
		return err
	}
	return s.send(ctx, p.Email, "Welcome to UniLink! 🎉", body)
}

func (s *ResendSender) SendBookingConfirmation(ctx context.Context, p models.BookingEmailPayload) error {
	body, err := renderBookingConfirmation(p.Booking, s.siteURL)
	if err != nil {
		return err
	}
	return s.send(ctx, p.Booking.Email, "Your UniLink booking is confirmed", body)
}

func (s *ResendSender) send(ctx context.Context, to, subject, html string) error {
	if s.emails == nil {
		s.logger.Info("Email skipped, no provider configured", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	s.logger.Info("Email sent", zap.String("to", to), zap.String("messageId", resp.Id))
	return nil
}
