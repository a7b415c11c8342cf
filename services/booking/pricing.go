package booking

import (
	"fmt"
	"time"

	"unilink/config"
	"unilink/models"
)

// PriceList holds the fixed prices in minor currency units.
type PriceList struct {
	OneWayCents    int64
	RoundTripCents int64
	LuggageCents   int64
	LateFeeCents   int64
	Currency       string
}

func NewPriceList(cfg *config.Config) PriceList {
	return PriceList{
		OneWayCents:    cfg.PriceOneWayCents,
		RoundTripCents: cfg.PriceRoundTripCents,
		LuggageCents:   cfg.PriceLuggageCents,
		LateFeeCents:   cfg.LateFeeCents,
		Currency:       cfg.Currency,
	}
}

// BaseFare returns the ticket price for a trip type. Return-only seats are
// sold at the one-way price.
func (p PriceList) BaseFare(t models.TripType) int64 {
	if t == models.TripRoundTrip {
		return p.RoundTripCents
	}
	return p.OneWayCents
}

// Pricer computes quotes. It is pure: the same inputs always give the same
// quote.
type Pricer struct {
	Prices PriceList
	Window LateFeeWindow
}

// Quote prices one ticket booked at now.
func (p Pricer) Quote(t models.TripType, addLuggage bool, now time.Time) models.Quote {
	q := models.Quote{
		TripType:      t,
		BaseFareCents: p.Prices.BaseFare(t),
		Currency:      p.Prices.Currency,
	}
	if addLuggage {
		q.LuggageFeeCents = p.Prices.LuggageCents
	}
	if p.Window != nil && p.Window.Applies(now) {
		q.LastMinuteFeeCents = p.Prices.LateFeeCents
	}
	q.TotalCents = q.BaseFareCents + q.LuggageFeeCents + q.LastMinuteFeeCents
	return q
}

// LineItems turns a quote into one priced line per charge.
func (p Pricer) LineItems(q models.Quote, trip Trip) []LineItem {
	items := []LineItem{{
		Name:        productName(q.TripType, trip),
		Description: productDescription(q.TripType, trip),
		AmountCents: q.BaseFareCents,
	}}
	if q.LuggageFeeCents > 0 {
		items = append(items, LineItem{
			Name:        "Carry-on sized luggage",
			Description: "One carry-on sized luggage add-on",
			AmountCents: q.LuggageFeeCents,
		})
	}
	if q.LastMinuteFeeCents > 0 {
		items = append(items, LineItem{
			Name:        p.Window.Label(),
			Description: fmt.Sprintf("Late fee applied because booking was made %s (%s)", p.Window, formatTripTime(trip.Departure)),
			AmountCents: q.LastMinuteFeeCents,
		})
	}
	return items
}

func productName(t models.TripType, trip Trip) string {
	var kind string
	switch t {
	case models.TripReturnOnly:
		kind = "Return Only"
	case models.TripRoundTrip:
		kind = "Round Trip"
	default:
		kind = "One-Way"
	}
	return "UniLink " + trip.DisplayRoute() + " " + kind + " Bus Ticket"
}

func productDescription(t models.TripType, trip Trip) string {
	route := CampusName(trip.HomeLocation) + " to " + CampusName(trip.Destination)
	arrive := "Arrive 10 minutes before " + trip.Departure.Format("3:04 PM") + " departure."
	switch t {
	case models.TripReturnOnly:
		return formatTripTime(trip.Return) + ". " + route + " return only. " + arrive
	case models.TripRoundTrip:
		return formatTripTime(trip.Departure) + " – " + formatTripTime(trip.Return) + ". " + route + " round trip. " + arrive
	default:
		return formatTripTime(trip.Departure) + ". " + route + " one-way. " + arrive
	}
}

func formatTripTime(t time.Time) string {
	return t.Format("January 2, 3:04 PM")
}

// NewPricer wires the configured prices to the configured late-fee window.
func NewPricer(cfg *config.Config, trip Trip) Pricer {
	return Pricer{Prices: NewPriceList(cfg), Window: NewLateFeeWindow(cfg, trip)}
}
