package booking

import (
	"fmt"
	"time"

	"unilink/config"
)

// LateFeeWindow decides whether a booking made at now pays the late fee.
// The same window is used for the displayed quote and the charged amount.
type LateFeeWindow interface {
	Applies(now time.Time) bool
	// Label names the fee on the checkout line item.
	Label() string
	String() string
}

// HoursWindow is the half-open interval [departure-window, departure),
// compared on absolute instants.
type HoursWindow struct {
	Departure time.Time
	Window    time.Duration
}

func (w HoursWindow) Applies(now time.Time) bool {
	cutoff := w.Departure.Add(-w.Window)
	return !now.Before(cutoff) && now.Before(w.Departure)
}

func (w HoursWindow) Label() string {
	return fmt.Sprintf("%g-hour late fee", w.Window.Hours())
}

func (w HoursWindow) String() string {
	return fmt.Sprintf("within %g hours of departure", w.Window.Hours())
}

// DaysWindow compares calendar days in the trip's time zone: the fee
// applies when the departure date is between 1 and Days days away.
// Departure day itself is outside the window.
type DaysWindow struct {
	Departure time.Time
	Days      int
	Location  *time.Location
}

func (w DaysWindow) Applies(now time.Time) bool {
	n := daysBetween(now, w.Departure, w.Location)
	return n >= 1 && n <= w.Days
}

func (w DaysWindow) Label() string {
	return fmt.Sprintf("%d-day late fee", w.Days)
}

func (w DaysWindow) String() string {
	return fmt.Sprintf("within %d days of departure", w.Days)
}

// daysBetween counts local midnights from a's date to b's date.
func daysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	a, b = a.In(loc), b.In(loc)
	// Noon UTC on each calendar date keeps DST transitions out of the division.
	da := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// NewLateFeeWindow picks the window variant configured by LATE_FEE_MODE.
func NewLateFeeWindow(cfg *config.Config, trip Trip) LateFeeWindow {
	if cfg.LateFeeMode == "days" {
		return DaysWindow{Departure: trip.Departure, Days: cfg.LateFeeWindowDays, Location: trip.Location}
	}
	return HoursWindow{Departure: trip.Departure, Window: time.Duration(cfg.LateFeeWindowHours) * time.Hour}
}
