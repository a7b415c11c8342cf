package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	bookingRepo "unilink/database/repository/booking"
	"unilink/models"
	"unilink/utils"

	"github.com/phpdave11/gofpdf"
)

// WriteTicket renders the e-ticket for the booking paid with sessionID.
// Knowing the session id is what entitles the caller to the ticket.
func (s *DefaultBookingService) WriteTicket(ctx context.Context, w io.Writer, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return utils.NewAppError(utils.KindInvalidRequest, "Session ID is required")
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	b, err := s.Repo.GetBySessionID(storeCtx, sessionID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return utils.NotFoundError("Booking not found")
		}
		return utils.WrapAppError(utils.KindInternal, "Failed to load booking", err)
	}
	return s.renderTicket(w, b)
}

func (s *DefaultBookingService) renderTicket(w io.Writer, b *models.Booking) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("UniLink E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "UNILINK E-TICKET")
	pdf.Ln(12)

	route := CampusName(b.HomeLocation) + " to " + CampusName(b.Destination)
	lines := []string{
		"Booking ID : " + b.ID,
		"Passenger  : " + b.Name,
		"Email      : " + b.Email,
		"Route      : " + route,
		"Trip       : " + tripLabel(b.TripType()),
	}
	if b.TripType() != models.TripReturnOnly {
		lines = append(lines, "Departs    : "+formatTripTime(s.Trip.Departure))
	}
	if b.TripType() != models.TripOneWay {
		lines = append(lines, "Returns    : "+formatTripTime(s.Trip.Return))
	}
	if b.AddLuggage {
		lines = append(lines, "Luggage    : 1 carry-on")
	}
	lines = append(lines,
		fmt.Sprintf("Paid       : %s %.2f", strings.ToUpper(s.Pricer.Prices.Currency), float64(b.AmountTotal)/100),
		"Status     : "+b.Status,
	)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Courier", "", 12)
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This ticket is valid for one passenger (one seat). Arrive 10 minutes before departure and show it when boarding.", "", "", false)

	return pdf.Output(w)
}

func tripLabel(t models.TripType) string {
	switch t {
	case models.TripRoundTrip:
		return "Round trip"
	case models.TripReturnOnly:
		return "Return only"
	default:
		return "One-way"
	}
}
