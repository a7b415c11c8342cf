package models

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// TripType is one of the three ways a seat can be sold.
type TripType string

const (
	TripOneWay     TripType = "one-way"
	TripRoundTrip  TripType = "round-trip"
	TripReturnOnly TripType = "return-only"
)

// TripTypeFromFlags derives the trip variant from the two wire flags.
// returnOnly wins when both are set.
func TripTypeFromFlags(roundTrip, returnOnly bool) TripType {
	switch {
	case returnOnly:
		return TripReturnOnly
	case roundTrip:
		return TripRoundTrip
	default:
		return TripOneWay
	}
}

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	switch t {
	case TripOneWay, TripRoundTrip, TripReturnOnly:
		return true
	}
	return false
}

// Booking is a reservation on the route. Records created by the paid flow
// are confirmed and carry the Stripe session id they were paid with.
type Booking struct {
	ID              string    `bson:"id" json:"id"`                                             // Time-ordered UUID
	StripeSessionID string    `bson:"stripeSessionId,omitempty" json:"stripeSessionId,omitempty"` // Idempotency key for confirmation
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"` // Always lower-cased
	Phone           *string   `bson:"phone" json:"phone"`
	HomeLocation    string    `bson:"homeLocation" json:"homeLocation"`
	Destination     string    `bson:"destination" json:"destination"`
	Route           string    `bson:"route" json:"route"` // homeLocation-destination
	RoundTrip       bool      `bson:"roundTrip" json:"roundTrip"`
	ReturnOnly      bool      `bson:"returnOnly" json:"returnOnly"`
	AddLuggage      bool      `bson:"addLuggage" json:"addLuggage"`
	ReferrerName    *string   `bson:"referrerName" json:"referrerName"`
	LastMinuteFee   bool      `bson:"lastMinuteFee" json:"lastMinuteFee"` // Frozen at checkout, never recomputed
	TripDeparture   string    `bson:"tripDeparture,omitempty" json:"tripDeparture,omitempty"`
	TripReturn      string    `bson:"tripReturn,omitempty" json:"tripReturn,omitempty"`
	AmountTotal     int64     `bson:"amountTotal" json:"amountTotal"` // Minor units, as reported by Stripe
	Status          string    `bson:"status" json:"status"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// TripType returns the trip variant the booking was sold as.
func (b Booking) TripType() TripType {
	return TripTypeFromFlags(b.RoundTrip, b.ReturnOnly)
}

// CheckoutRequest is the body of POST /api/bookings/checkout.
type CheckoutRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,mailbox"`
	Phone        string `json:"phone"`
	Route        string `json:"route"`
	RoundTrip    bool   `json:"roundTrip"`
	ReturnOnly   bool   `json:"returnOnly"`
	ReferrerName string `json:"referrerName"`
	AddLuggage   bool   `json:"addLuggage"`
}

// CheckoutResponse carries the hosted payment page the client must open.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ConfirmRequest is the body of POST /api/bookings/confirm. session_id is
// accepted for clients that still post the older field name.
type ConfirmRequest struct {
	SessionID       string `json:"sessionId"`
	LegacySessionID string `json:"session_id"`
}

// ID returns whichever session id field was supplied.
func (r ConfirmRequest) ID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.LegacySessionID
}

// ConfirmResult is what the confirmation handler returns.
type ConfirmResult struct {
	Booking *Booking
	Created bool
}

// PendingBookingRequest is the body of POST /api/bookings, the unpaid path.
type PendingBookingRequest struct {
	Email        string `json:"email" validate:"required,mailbox"`
	HomeLocation string `json:"homeLocation" validate:"required"`
	Destination  string `json:"destination" validate:"required,nefield=HomeLocation"`
}

// Capacity is derived on every read from the number of stored bookings.
type Capacity struct {
	Count   int  `json:"count"`
	SoldOut bool `json:"soldOut"`
	Limit   int  `json:"limit"`
}

// Quote is the price breakdown for one ticket, in minor currency units.
type Quote struct {
	TripType           TripType `json:"tripType"`
	BaseFareCents      int64    `json:"baseFareCents"`
	LuggageFeeCents    int64    `json:"luggageFeeCents"`
	LastMinuteFeeCents int64    `json:"lastMinuteFeeCents"`
	TotalCents         int64    `json:"totalCents"`
	Currency           string   `json:"currency"`
}

// LastMinute reports whether the quote includes the late fee.
func (q Quote) LastMinute() bool {
	return q.LastMinuteFeeCents > 0
}
