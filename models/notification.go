package models

// WelcomeEmailPayload is queued after a waitlist signup.
type WelcomeEmailPayload struct {
	Email       string `json:"email"`
	School      string `json:"school"`
	Destination string `json:"destination"`
}

// BookingEmailPayload is queued after a booking is confirmed.
type BookingEmailPayload struct {
	Booking Booking `json:"booking"`
}
