package waitlistRepo

import (
	"context"
	"errors"

	"unilink/models"
)

var (
	ErrNotFound       = errors.New("waitlist entry not found")
	ErrDuplicateEmail = errors.New("email already on the waitlist")
)

// WaitlistRepository stores one record per signup, unique by email.
type WaitlistRepository interface {
	// Create inserts e, or returns ErrDuplicateEmail when the email exists.
	Create(ctx context.Context, e models.WaitlistEntry) (*models.WaitlistEntry, error)
	List(ctx context.Context) ([]models.WaitlistEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}
