package booking

import (
	"fmt"
	"testing"
	"time"

	"unilink/config"
	"unilink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Currency:            "usd",
		TicketLimit:         35,
		RouteCode:           "purdue-uiuc",
		TripTimezone:        "America/Indiana/Indianapolis",
		TripDeparture:       "2025-03-06T18:00:00",
		TripReturn:          "2025-03-08T18:00:00",
		PriceOneWayCents:    3000,
		PriceRoundTripCents: 6000,
		PriceLuggageCents:   750,
		LateFeeCents:        500,
		LateFeeMode:         "hours",
		LateFeeWindowHours:  24,
		LateFeeWindowDays:   3,
	}
}

func testTrip(t *testing.T) Trip {
	t.Helper()
	trip, err := NewTrip(testConfig())
	require.NoError(t, err)
	return trip
}

func TestNewTrip(t *testing.T) {
	trip := testTrip(t)

	assert.Equal(t, "purdue", trip.HomeLocation)
	assert.Equal(t, "uiuc", trip.Destination)
	assert.Equal(t, "Purdue → UIUC", trip.DisplayRoute())
	assert.Equal(t, "2025-03-06T18:00:00", trip.DepartureWall())
	assert.Equal(t, "2025-03-08T18:00:00", trip.ReturnWall())
	assert.Equal(t, "America/Indiana/Indianapolis", trip.Location.String())

	cfg := testConfig()
	cfg.TripReturn = "2025-03-01T18:00:00"
	_, err := NewTrip(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.TripTimezone = "Mars/Olympus"
	_, err = NewTrip(cfg)
	assert.Error(t, err)
}

func TestPricer_QuoteTotals(t *testing.T) {
	trip := testTrip(t)
	pricer := NewPricer(testConfig(), trip)
	outside := trip.Departure.Add(-72 * time.Hour)
	inside := trip.Departure.Add(-time.Hour)

	baseFares := map[models.TripType]int64{
		models.TripOneWay:     3000,
		models.TripRoundTrip:  6000,
		models.TripReturnOnly: 3000,
	}

	for tripType, base := range baseFares {
		for _, luggage := range []bool{false, true} {
			for _, now := range []time.Time{outside, inside} {
				name := fmt.Sprintf("%s/luggage=%v/late=%v", tripType, luggage, now.Equal(inside))
				t.Run(name, func(t *testing.T) {
					q := pricer.Quote(tripType, luggage, now)

					var luggageFee, lateFee int64
					if luggage {
						luggageFee = 750
					}
					if now.Equal(inside) {
						lateFee = 500
					}
					assert.Equal(t, base, q.BaseFareCents)
					assert.Equal(t, luggageFee, q.LuggageFeeCents)
					assert.Equal(t, lateFee, q.LastMinuteFeeCents)
					assert.Equal(t, base+luggageFee+lateFee, q.TotalCents)
					assert.Equal(t, "usd", q.Currency)
				})
			}
		}
	}
}

func TestPriceList_RoundTripIsDoubleOneWayWithDefaults(t *testing.T) {
	prices := NewPriceList(testConfig())
	assert.Equal(t, 2*prices.BaseFare(models.TripOneWay), prices.BaseFare(models.TripRoundTrip))
}

func TestHoursWindow_Boundaries(t *testing.T) {
	trip := testTrip(t)
	w := HoursWindow{Departure: trip.Departure, Window: 24 * time.Hour}
	cutoff := trip.Departure.Add(-24 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before window", cutoff.Add(-time.Second), false},
		{"exactly at window start", cutoff, true},
		{"one second into window", cutoff.Add(time.Second), true},
		{"one second before departure", trip.Departure.Add(-time.Second), true},
		{"at departure", trip.Departure, false},
		{"after departure", trip.Departure.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Applies(tt.now))
		})
	}
}

func TestDaysWindow_Boundaries(t *testing.T) {
	trip := testTrip(t)
	loc := trip.Location
	w := DaysWindow{Departure: trip.Departure, Days: 3, Location: loc}

	// The window opens at local midnight three days before departure day.
	opens := time.Date(2025, 3, 3, 0, 0, 0, 0, loc)
	// Departure day starts at local midnight on March 6.
	closes := time.Date(2025, 3, 6, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one second before window", opens.Add(-time.Second), false},
		{"one second after window opens", opens.Add(time.Second), true},
		{"day before departure, late evening", closes.Add(-time.Second), true},
		{"departure day morning", closes.Add(time.Second), false},
		{"departure day after departure", trip.Departure.Add(time.Hour), false},
		{"a week out", opens.Add(-7 * 24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Applies(tt.now))
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// US clocks spring forward on 2025-03-09.
	a := time.Date(2025, 3, 8, 23, 30, 0, 0, loc)
	b := time.Date(2025, 3, 10, 0, 30, 0, 0, loc)
	assert.Equal(t, 2, daysBetween(a, b, loc))
}

func TestNewLateFeeWindow_Mode(t *testing.T) {
	trip := testTrip(t)
	cfg := testConfig()

	hours := NewLateFeeWindow(cfg, trip)
	assert.IsType(t, HoursWindow{}, hours)
	assert.Equal(t, "24-hour late fee", hours.Label())

	cfg.LateFeeMode = "days"
	days := NewLateFeeWindow(cfg, trip)
	assert.IsType(t, DaysWindow{}, days)
	assert.Equal(t, "3-day late fee", days.Label())
}

func TestPricer_LineItems(t *testing.T) {
	trip := testTrip(t)
	pricer := NewPricer(testConfig(), trip)

	q := pricer.Quote(models.TripRoundTrip, true, trip.Departure.Add(-time.Hour))
	items := pricer.LineItems(q, trip)

	require.Len(t, items, 3)
	assert.Equal(t, "UniLink Purdue → UIUC Round Trip Bus Ticket", items[0].Name)
	assert.Contains(t, items[0].Description, "March 6, 6:00 PM – March 8, 6:00 PM")
	assert.Equal(t, int64(6000), items[0].AmountCents)
	assert.Equal(t, "Carry-on sized luggage", items[1].Name)
	assert.Equal(t, int64(750), items[1].AmountCents)
	assert.Equal(t, "24-hour late fee", items[2].Name)
	assert.Contains(t, items[2].Description, "within 24 hours of departure")
	assert.Equal(t, int64(500), items[2].AmountCents)

	var sum int64
	for _, it := range items {
		sum += it.AmountCents
	}
	assert.Equal(t, q.TotalCents, sum)

	plain := pricer.LineItems(pricer.Quote(models.TripReturnOnly, false, trip.Departure.Add(-72*time.Hour)), trip)
	require.Len(t, plain, 1)
	assert.Equal(t, "UniLink Purdue → UIUC Return Only Bus Ticket", plain[0].Name)
	assert.Contains(t, plain[0].Description, "March 8, 6:00 PM")
}
