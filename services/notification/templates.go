package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"unilink/models"
)

var schoolNames = map[string]string{
	"uiuc":   "University of Illinois Urbana-Champaign (UIUC)",
	"iu":     "Indiana University Bloomington (IU)",
	"purdue": "Purdue University",
}

// SchoolName returns the long display name of a campus code.
func SchoolName(code string) string {
	if name, ok := schoolNames[code]; ok {
		return name
	}
	return code
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
  </head>
  <body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
      <tr>
        <td style="padding: 40px 20px; text-align: center; background-color: #1e293b;">
          <h1 style="margin: 0; color: #ffffff; font-size: 32px; font-weight: bold;">UniLink</h1>
        </td>
      </tr>
      <tr>
        <td style="padding: 40px 20px; background-color: #ffffff;">
          {{template "content" .}}
          <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 30px 0;">
          <p style="margin: 0; color: #6b7280; font-size: 14px; line-height: 1.6;">
            If you have any questions, just reply to this email. We're here to help!<br><br>
            Best regards,<br>
            <strong>The UniLink Team</strong>
          </p>
        </td>
      </tr>
      <tr>
        <td style="padding: 20px; text-align: center; background-color: #f9fafb; color: #6b7280; font-size: 12px;">
          <p style="margin: 0 0 10px 0;">&copy; {{.Year}} UniLink. All rights reserved.</p>
          <p style="margin: 0;">Connecting students across college campuses</p>
        </td>
      </tr>
    </table>
  </body>
</html>{{end}}`

const welcomeHTML = `{{define "content"}}
<h2 style="margin: 0 0 20px 0; color: #1f2937; font-size: 24px;">Welcome to UniLink! 🎉</h2>
<p style="margin: 0 0 20px 0; color: #4b5563; font-size: 16px; line-height: 1.6;">
  Thank you for joining the UniLink waitlist! We're excited to have you on board.
</p>
<div style="background-color: #eff6ff; border-left: 4px solid #2563eb; padding: 20px; margin: 20px 0; border-radius: 4px;">
  <p style="margin: 0 0 10px 0; color: #1e40af; font-weight: 600; font-size: 14px;">YOUR INTEREST</p>
  <p style="margin: 0; color: #1e293b; font-size: 16px;">
    <strong>School:</strong> {{.School}}<br>
    <strong>Destination:</strong> {{.Destination}}
  </p>
</div>
<p style="margin: 20px 0; color: #4b5563; font-size: 16px; line-height: 1.6;">
  As a waitlist member, you'll be among the first to know when we go live and get early access to book your first trip.
</p>
<div style="margin: 30px 0; text-align: center;">
  <a href="{{.SiteURL}}" style="display: inline-block; background-color: #2563eb; color: #ffffff; text-decoration: none; padding: 12px 24px; border-radius: 8px; font-weight: 600;">Visit UniLink</a>
</div>
{{end}}`

const bookingHTML = `{{define "content"}}
<h2 style="margin: 0 0 20px 0; color: #1f2937; font-size: 24px;">You're booked, {{.Name}}!</h2>
<div style="background-color: #eff6ff; border-left: 4px solid #2563eb; padding: 20px; margin: 20px 0; border-radius: 4px;">
  <p style="margin: 0; color: #1e293b; font-size: 16px;">
    <strong>Booking:</strong> {{.ID}}<br>
    <strong>Route:</strong> {{.From}} &rarr; {{.To}}<br>
    <strong>Trip:</strong> {{.TripType}}<br>
    {{if .Departure}}<strong>Departs:</strong> {{.Departure}}<br>{{end}}
    {{if .Return}}<strong>Returns:</strong> {{.Return}}<br>{{end}}
    {{if .Luggage}}<strong>Luggage:</strong> 1 carry-on<br>{{end}}
    <strong>Paid:</strong> {{.Amount}}
  </p>
</div>
{{if .TicketURL}}<div style="margin: 30px 0; text-align: center;">
  <a href="{{.TicketURL}}" style="display: inline-block; background-color: #2563eb; color: #ffffff; text-decoration: none; padding: 12px 24px; border-radius: 8px; font-weight: 600;">Download your e-ticket</a>
</div>{{end}}
{{end}}`

var (
	welcomeTmpl = template.Must(template.Must(template.New("welcome").Parse(layoutHTML)).Parse(welcomeHTML))
	bookingTmpl = template.Must(template.Must(template.New("booking").Parse(layoutHTML)).Parse(bookingHTML))
)

type welcomeView struct {
	Title       string
	Year        int
	School      string
	Destination string
	SiteURL     string
}

type bookingView struct {
	Title     string
	Year      int
	ID        string
	Name      string
	From      string
	To        string
	TripType  string
	Departure string
	Return    string
	Luggage   bool
	Amount    string
	TicketURL string
}

func renderWelcome(p models.WelcomeEmailPayload, siteURL string) (string, error) {
	if siteURL == "" {
		siteURL = "https://unilink.app"
	}
	return execute(welcomeTmpl, welcomeView{
		Title:       "Welcome to UniLink",
		Year:        time.Now().Year(),
		School:      SchoolName(p.School),
		Destination: SchoolName(p.Destination),
		SiteURL:     siteURL,
	})
}

func renderBookingConfirmation(b models.Booking, siteURL string) (string, error) {
	v := bookingView{
		Title:    "Your UniLink booking",
		Year:     time.Now().Year(),
		ID:       b.ID,
		Name:     b.Name,
		From:     SchoolName(b.HomeLocation),
		To:       SchoolName(b.Destination),
		TripType: string(b.TripType()),
		Luggage:  b.AddLuggage,
		Amount:   formatAmount(b.AmountTotal),
	}
	switch b.TripType() {
	case models.TripOneWay:
		v.Departure = b.TripDeparture
	case models.TripReturnOnly:
		v.Return = b.TripReturn
	default:
		v.Departure, v.Return = b.TripDeparture, b.TripReturn
	}
	if siteURL != "" && b.StripeSessionID != "" {
		v.TicketURL = siteURL + "/api/bookings/ticket?session_id=" + b.StripeSessionID
	}
	return execute(bookingTmpl, v)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
