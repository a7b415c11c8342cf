package models

import "time"

// WaitlistEntry is a pre-launch signup, distinct from a booking.
type WaitlistEntry struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"` // Lower-cased, unique
	School       string    `bson:"school" json:"school"`
	Destination  string    `bson:"destination" json:"destination"`
	ReferrerName *string   `bson:"referrerName" json:"referrerName"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// WaitlistRequest is the body of POST /api/waitlist.
type WaitlistRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,mailbox"`
	School       string `json:"school" validate:"required"`
	Destination  string `json:"destination" validate:"required"`
	ReferrerName string `json:"referrerName"`
}
