package waitlist

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	waitlistRepo "unilink/database/repository/waitlist"
	"unilink/models"
	"unilink/services/booking"
	"unilink/services/notification"
	"unilink/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WaitlistService manages pre-launch signups.
type WaitlistService interface {
	Join(ctx context.Context, req models.WaitlistRequest) (*models.WaitlistEntry, error)
	List(ctx context.Context) []models.WaitlistEntry
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// WelcomeQueue hands welcome emails to the background worker.
type WelcomeQueue interface {
	EnqueueWelcome(ctx context.Context, p models.WelcomeEmailPayload) error
}

type DefaultWaitlistService struct {
	Repo         waitlistRepo.WaitlistRepository
	Emails       WelcomeQueue
	Validate     *validator.Validate
	Location     *time.Location // Time zone of exported signup times
	StoreTimeout time.Duration
	Logger       *zap.Logger
}

func (s *DefaultWaitlistService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

// Join adds a signup. The welcome email is queued afterwards; failing to
// queue it never fails the signup.
func (s *DefaultWaitlistService) Join(ctx context.Context, req models.WaitlistRequest) (*models.WaitlistEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.Validate.Struct(req); err != nil {
		return nil, joinValidationError(err)
	}

	entry := models.WaitlistEntry{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       strings.ToLower(req.Email),
		School:      req.School,
		Destination: req.Destination,
		CreatedAt:   time.Now().UTC(),
	}
	if ref := strings.TrimSpace(req.ReferrerName); ref != "" {
		entry.ReferrerName = &ref
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	stored, err := s.Repo.Create(storeCtx, entry)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrDuplicateEmail) {
			return nil, utils.NewAppError(utils.KindConflict, "This email is already on the waitlist")
		}
		return nil, utils.WrapAppError(utils.KindInternal, "Failed to save to waitlist. Please try again.", err)
	}

	if s.Emails != nil {
		payload := models.WelcomeEmailPayload{Email: stored.Email, School: stored.School, Destination: stored.Destination}
		if err := s.Emails.EnqueueWelcome(ctx, payload); err != nil {
			s.Logger.Error("Failed to queue welcome email", zap.String("email", stored.Email), zap.Error(err))
		}
	}
	s.Logger.Info("Waitlist signup", zap.String("entryId", stored.ID), zap.String("school", stored.School))
	return stored, nil
}

// joinValidationError maps the first failing rule to the signup form's
// messages: a missing name, then missing fields, then a malformed email.
func joinValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return utils.ValidationError("Email, school, and destination are required")
	}
	failed := make(map[string]string, len(verrs))
	missing := false
	for _, fe := range verrs {
		failed[fe.StructField()] = fe.Tag()
		if fe.Tag() == "required" {
			missing = true
		}
	}
	switch {
	case failed["Name"] != "":
		return utils.ValidationError("Full name is required")
	case missing:
		return utils.ValidationError("Email, school, and destination are required")
	default:
		return utils.ValidationError("Invalid email format")
	}
}

// List returns every signup, oldest first. Read failures yield an empty
// list so the admin page still renders.
func (s *DefaultWaitlistService) List(ctx context.Context) []models.WaitlistEntry {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	entries, err := s.Repo.List(ctx)
	if err != nil {
		s.Logger.Warn("Failed to read waitlist entries", zap.Error(err))
		return []models.WaitlistEntry{}
	}
	return entries
}

func (s *DefaultWaitlistService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, waitlistRepo.ErrNotFound) {
			return utils.NotFoundError("Entry not found")
		}
		return utils.WrapAppError(utils.KindInternal, "Failed to delete entry", err)
	}
	return nil
}

func (s *DefaultWaitlistService) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	n, err := s.Repo.Clear(ctx)
	if err != nil {
		return 0, utils.WrapAppError(utils.KindInternal, "Failed to delete entry", err)
	}
	return n, nil
}

var csvHeader = []string{"Email", "School", "Destination", "Signed Up"}

// ExportCSV writes every signup as CSV.
func (s *DefaultWaitlistService) ExportCSV(ctx context.Context, w io.Writer) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	entries, err := s.Repo.List(ctx)
	if err != nil {
		return utils.WrapAppError(utils.KindInternal, "Failed to read waitlist entries", err)
	}

	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		destination := "N/A"
		if e.Destination != "" {
			destination = booking.CampusName(e.Destination)
		}
		row := []string{
			e.Email,
			notification.SchoolName(e.School),
			destination,
			e.CreatedAt.In(loc).Format("Jan 2, 2006, 03:04 PM"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
