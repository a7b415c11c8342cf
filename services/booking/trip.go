package booking

import (
	"fmt"
	"strings"
	"time"

	"unilink/config"
)

// TripLayout is the wall-clock format trip times are configured and stored in.
const TripLayout = "2006-01-02T15:04:05"

var campusNames = map[string]string{
	"purdue": "Purdue",
	"uiuc":   "UIUC",
	"iu":     "IU",
}

// Trip is the single scheduled run the service sells seats on.
type Trip struct {
	Route        string
	HomeLocation string
	Destination  string
	Departure    time.Time
	Return       time.Time
	Location     *time.Location
}

// NewTrip builds the trip from configuration.
func NewTrip(cfg *config.Config) (Trip, error) {
	loc, err := time.LoadLocation(cfg.TripTimezone)
	if err != nil {
		return Trip{}, fmt.Errorf("invalid TRIP_TIMEZONE: %w", err)
	}
	dep, err := time.ParseInLocation(TripLayout, cfg.TripDeparture, loc)
	if err != nil {
		return Trip{}, fmt.Errorf("invalid TRIP_DEPARTURE: %w", err)
	}
	ret, err := time.ParseInLocation(TripLayout, cfg.TripReturn, loc)
	if err != nil {
		return Trip{}, fmt.Errorf("invalid TRIP_RETURN: %w", err)
	}
	if ret.Before(dep) {
		return Trip{}, fmt.Errorf("TRIP_RETURN %s is before TRIP_DEPARTURE %s", cfg.TripReturn, cfg.TripDeparture)
	}

	home, dest, ok := SplitRoute(cfg.RouteCode)
	if !ok {
		return Trip{}, fmt.Errorf("invalid ROUTE_CODE %q", cfg.RouteCode)
	}
	return Trip{
		Route:        cfg.RouteCode,
		HomeLocation: home,
		Destination:  dest,
		Departure:    dep,
		Return:       ret,
		Location:     loc,
	}, nil
}

// SplitRoute splits "home-destination" into its two campus codes.
func SplitRoute(route string) (home, destination string, ok bool) {
	home, destination, ok = strings.Cut(route, "-")
	if !ok || home == "" || destination == "" {
		return "", "", false
	}
	return home, destination, true
}

// CampusName returns the display name of a campus code.
func CampusName(code string) string {
	if name, ok := campusNames[code]; ok {
		return name
	}
	return code
}

// DisplayRoute renders the route as "Purdue → UIUC".
func (t Trip) DisplayRoute() string {
	return CampusName(t.HomeLocation) + " → " + CampusName(t.Destination)
}

// DepartureWall and ReturnWall are the local wall times stored on bookings.
func (t Trip) DepartureWall() string { return t.Departure.Format(TripLayout) }

func (t Trip) ReturnWall() string { return t.Return.Format(TripLayout) }
