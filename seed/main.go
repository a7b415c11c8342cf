// Command seed fills the configured store with sample bookings and waitlist
// signups so the admin pages have something to show in development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"unilink/config"
	"unilink/database"
	bookingRepo "unilink/database/repository/booking"
	waitlistRepo "unilink/database/repository/waitlist"
	"unilink/models"
	"unilink/services/booking"
	"unilink/utils"

	"github.com/google/uuid"
)

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Linus", "Barbara", "Ken", "Margaret", "Dennis"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie"}
	campuses   = []string{"purdue", "uiuc", "iu"}
	referrers  = []string{"", "", "", "Jordan", "Sam"}
)

func main() {
	nBookings := flag.Int("bookings", 20, "number of confirmed bookings to create")
	nWaitlist := flag.Int("waitlist", 10, "number of waitlist signups to create")
	reset := flag.Bool("clear", false, "delete existing records first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bookings, waitlisted, closeStore := openStore(ctx, cfg)
	defer closeStore()

	trip, err := booking.NewTrip(cfg)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	pricer := booking.NewPricer(cfg, trip)

	if *reset {
		nb, err := bookings.Clear(ctx)
		if err != nil {
			log.Fatalf("seed: clear bookings: %v", err)
		}
		nw, err := waitlisted.Clear(ctx)
		if err != nil {
			log.Fatalf("seed: clear waitlist: %v", err)
		}
		log.Printf("Cleared %d bookings and %d waitlist entries", nb, nw)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	start := time.Now().Add(-72 * time.Hour)

	for i := 0; i < *nBookings; i++ {
		b := randomBooking(rng, i, trip, pricer, start.Add(time.Duration(i)*17*time.Minute))
		if _, _, err := bookings.CreateIfAbsent(ctx, b); err != nil {
			log.Fatalf("seed: create booking %d: %v", i, err)
		}
	}
	for i := 0; i < *nWaitlist; i++ {
		e := randomEntry(rng, i, start.Add(time.Duration(i)*23*time.Minute))
		if _, err := waitlisted.Create(ctx, e); err != nil {
			log.Printf("seed: skip waitlist entry %s: %v", e.Email, err)
		}
	}
	log.Printf("Seeded %d bookings and %d waitlist entries into %s", *nBookings, *nWaitlist, cfg.StoreBackend)
}

func openStore(ctx context.Context, cfg *config.Config) (bookingRepo.BookingRepository, waitlistRepo.WaitlistRepository, func()) {
	if cfg.StoreBackend == "mongo" {
		client, err := database.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		db := database.Database(client, cfg)
		b, err := bookingRepo.NewMongoBookingRepo(ctx, db)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		w, err := waitlistRepo.NewMongoWaitlistRepo(ctx, db)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		return b, w, func() { client.Disconnect(context.Background()) }
	}

	client, err := utils.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	return bookingRepo.NewRedisBookingRepo(client), waitlistRepo.NewRedisWaitlistRepo(client), func() { client.Close() }
}

func randomName(rng *rand.Rand) (string, string) {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	return first + " " + last, strings.ToLower(first + "." + last)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func randomBooking(rng *rand.Rand, i int, trip booking.Trip, pricer booking.Pricer, createdAt time.Time) models.Booking {
	name, handle := randomName(rng)
	tripType := []models.TripType{models.TripOneWay, models.TripRoundTrip, models.TripReturnOnly}[rng.Intn(3)]
	luggage := rng.Intn(4) == 0
	quote := pricer.Quote(tripType, luggage, createdAt)

	return models.Booking{
		ID:              uuid.Must(uuid.NewV7()).String(),
		StripeSessionID: fmt.Sprintf("cs_seed_%04d", i),
		Name:            name,
		Email:           fmt.Sprintf("%s%d@example.edu", handle, i),
		HomeLocation:    trip.HomeLocation,
		Destination:     trip.Destination,
		Route:           trip.Route,
		RoundTrip:       tripType == models.TripRoundTrip,
		ReturnOnly:      tripType == models.TripReturnOnly,
		AddLuggage:      luggage,
		ReferrerName:    optional(referrers[rng.Intn(len(referrers))]),
		LastMinuteFee:   quote.LastMinute(),
		TripDeparture:   trip.DepartureWall(),
		TripReturn:      trip.ReturnWall(),
		AmountTotal:     quote.TotalCents,
		Status:          models.BookingConfirmed,
		CreatedAt:       createdAt.UTC(),
	}
}

func randomEntry(rng *rand.Rand, i int, createdAt time.Time) models.WaitlistEntry {
	name, handle := randomName(rng)
	school := campuses[rng.Intn(len(campuses))]
	dest := campuses[(rng.Intn(len(campuses)-1)+1+indexOf(school))%len(campuses)]
	return models.WaitlistEntry{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        fmt.Sprintf("%s.w%d@example.edu", handle, i),
		School:       school,
		Destination:  dest,
		ReferrerName: optional(referrers[rng.Intn(len(referrers))]),
		CreatedAt:    createdAt.UTC(),
	}
}

func indexOf(campus string) int {
	for i, c := range campuses {
		if c == campus {
			return i
		}
	}
	return 0
}
