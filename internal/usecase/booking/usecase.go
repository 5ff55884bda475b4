package booking

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "gas-booking-service/internal/domain/booking"
	"gas-booking-service/internal/usecase/validation"
	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

// Repository defines the interface for booking data access operations.
// Lookups by an unknown id return a NotFoundError.
type Repository interface {
	Create(ctx context.Context, b *domain.Booking) error
	List(ctx context.Context) ([]domain.Booking, error)
	GetByExternalID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	Delete(ctx context.Context, id string) (*domain.Booking, error)
}

// Notifier is told about every committed booking mutation. It must not block
// on delivery and has no way to fail the caller.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event, b *domain.Booking)
}

// Service implements booking CRUD and triggers notifications after each write.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new Service.
func New(r Repository, n Notifier, log *zap.Logger) *Service {
	return &Service{repo: r, notifier: n, log: log, validate: validation.New()}
}

// Create stores a new booking and queues a confirmation email.
func (s *Service) Create(ctx context.Context, in CreateBookingRequest) (*Booking, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating booking", zap.String("booking_id", in.ID))

	if err := validation.Struct(s.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ExternalID: in.ID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Date:       date,
		TimeSlot:   in.TimeSlot,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, domain.EventConfirmed, b)
	return toDTO(b), nil
}

// List returns every booking, unpaginated.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Booking, len(bookings))
	for i := range bookings {
		out[i] = *toDTO(&bookings[i])
	}
	return out, nil
}

// Get returns the booking with the given external id.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByExternalID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(b), nil
}

// Update overwrites the supplied fields, re-checks that every required field
// is still present, and queues an update email. Concurrent updates are last
// write wins.
func (s *Service) Update(ctx context.Context, in UpdateBookingRequest) (*Booking, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating booking", zap.String("booking_id", in.ID))

	if in.NewID != nil && *in.NewID != in.ID {
		return nil, apperrors.NewValidationError("id", "Booking id cannot be changed")
	}

	current, err := s.repo.GetByExternalID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	merged := CreateBookingRequest{
		ID:       current.ExternalID,
		Name:     pick(in.Name, current.Name),
		Email:    pick(in.Email, current.Email),
		Phone:    pick(in.Phone, current.Phone),
		Date:     pick(in.Date, domain.FormatDate(current.Date)),
		TimeSlot: pick(in.TimeSlot, current.TimeSlot),
	}
	if err := validation.Struct(s.validate, merged); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}
	date, err := parseDate(merged.Date)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Booking{
		ExternalID: merged.ID,
		Name:       merged.Name,
		Email:      merged.Email,
		Phone:      merged.Phone,
		Date:       date,
		TimeSlot:   merged.TimeSlot,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, domain.EventUpdated, updated)
	return toDTO(updated), nil
}

// Delete removes the booking and queues a cancellation email to the address
// it was booked under.
func (s *Service) Delete(ctx context.Context, id string) (*Booking, error) {
	logger.WithContext(ctx, s.log).Info("deleting booking", zap.String("booking_id", id))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, domain.EventCancelled, deleted)
	return toDTO(deleted), nil
}

func parseDate(s string) (time.Time, error) {
	date, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("date", "Date must be a valid date (YYYY-MM-DD)")
	}
	return date, nil
}

func pick(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

func toDTO(b *domain.Booking) *Booking {
	return &Booking{
		ID:       b.ExternalID,
		Name:     b.Name,
		Email:    b.Email,
		Phone:    b.Phone,
		Date:     domain.FormatDate(b.Date),
		TimeSlot: b.TimeSlot,
	}
}
