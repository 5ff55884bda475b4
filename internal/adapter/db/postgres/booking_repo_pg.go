package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gas-booking-service/internal/domain/booking"
	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

// bookingNotFoundMessage is what clients see for any unknown booking id.
const bookingNotFoundMessage = "Form data not found"

// BookingRepoPG implements the booking Repository interface using GORM.
type BookingRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewBookingRepoPG creates a new instance of BookingRepoPG.
func NewBookingRepoPG(db *gorm.DB, log *zap.Logger) *BookingRepoPG {
	return &BookingRepoPG{db: db, log: log}
}

// BookingSchema is the bookings table. ID is internal; every query goes
// through ExternalID.
type BookingSchema struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID  string    `gorm:"column:external_id;size:255;not null;uniqueIndex:idx_bookings_external_id"`
	Name        string    `gorm:"size:255;not null"`
	Email       string    `gorm:"size:255;not null"`
	Phone       string    `gorm:"size:64;not null"`
	BookingDate string    `gorm:"column:booking_date;size:10;not null"`
	TimeSlot    string    `gorm:"column:time_slot;size:64;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the BookingSchema model.
func (BookingSchema) TableName() string {
	return "bookings"
}

func bookingToSchema(b *booking.Booking) BookingSchema {
	return BookingSchema{
		ExternalID:  b.ExternalID,
		Name:        b.Name,
		Email:       b.Email,
		Phone:       b.Phone,
		BookingDate: booking.FormatDate(b.Date),
		TimeSlot:    b.TimeSlot,
	}
}

func (m BookingSchema) toDomain() (*booking.Booking, error) {
	date, err := booking.ParseDate(m.BookingDate)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("stored booking %q has invalid date %q", m.ExternalID, m.BookingDate), err)
	}
	return &booking.Booking{
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Date:       date,
		TimeSlot:   m.TimeSlot,
	}, nil
}

func notFound() error {
	return apperrors.NewNotFoundError("booking", bookingNotFoundMessage)
}

// Create inserts a booking. A reused external id yields an AlreadyExistsError.
func (r *BookingRepoPG) Create(ctx context.Context, b *booking.Booking) error {
	if b == nil {
		return errors.New("booking cannot be nil")
	}
	log := logger.WithContext(ctx, r.log)

	model := bookingToSchema(b)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateKey(err) {
			log.Warn("duplicate booking id", zap.String("booking_id", b.ExternalID))
			return apperrors.NewAlreadyExistsError("booking", fmt.Sprintf("Booking with id %s already exists", b.ExternalID))
		}
		log.Error("failed to create booking in db", zap.Error(err), zap.String("booking_id", b.ExternalID))
		return apperrors.NewInternalError("failed to create booking", err)
	}

	log.Info("booking created in db", zap.String("booking_id", b.ExternalID), zap.Int64("row_id", model.ID))
	return nil
}

// List returns every booking in insertion order.
func (r *BookingRepoPG) List(ctx context.Context) ([]booking.Booking, error) {
	var models []BookingSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list bookings from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}

	bookings := make([]booking.Booking, 0, len(models))
	for _, m := range models {
		b, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, nil
}

// GetByExternalID returns a NotFoundError when id is unknown.
func (r *BookingRepoPG) GetByExternalID(ctx context.Context, id string) (*booking.Booking, error) {
	model, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			logger.WithContext(ctx, r.log).Error("failed to get booking from db", zap.Error(err), zap.String("booking_id", id))
		}
		return nil, err
	}
	return model.toDomain()
}

// Update overwrites every mutable column of the booking identified by
// b.ExternalID and returns the stored result.
func (r *BookingRepoPG) Update(ctx context.Context, b *booking.Booking) (*booking.Booking, error) {
	if b == nil {
		return nil, errors.New("booking cannot be nil")
	}
	log := logger.WithContext(ctx, r.log)

	var updated BookingSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(tx, b.ExternalID)
		if err != nil {
			return err
		}

		m := bookingToSchema(b)
		if err := tx.Model(existing).Updates(map[string]any{
			"name":         m.Name,
			"email":        m.Email,
			"phone":        m.Phone,
			"booking_date": m.BookingDate,
			"time_slot":    m.TimeSlot,
		}).Error; err != nil {
			return apperrors.NewInternalError("failed to update booking", err)
		}

		reloaded, err := r.find(tx, b.ExternalID)
		if err != nil {
			return err
		}
		updated = *reloaded
		return nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Error("failed to update booking in db", zap.Error(err), zap.String("booking_id", b.ExternalID))
		}
		return nil, err
	}

	log.Info("booking updated in db", zap.String("booking_id", b.ExternalID))
	return updated.toDomain()
}

// Delete removes the booking and returns it as it was before removal.
func (r *BookingRepoPG) Delete(ctx context.Context, id string) (*booking.Booking, error) {
	log := logger.WithContext(ctx, r.log)

	var deleted BookingSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(tx, id)
		if err != nil {
			return err
		}
		res := tx.Delete(&BookingSchema{}, existing.ID)
		if res.Error != nil {
			return apperrors.NewInternalError("failed to delete booking", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound()
		}
		deleted = *existing
		return nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Error("failed to delete booking in db", zap.Error(err), zap.String("booking_id", id))
		}
		return nil, err
	}

	log.Info("booking deleted in db", zap.String("booking_id", id))
	return deleted.toDomain()
}

func (r *BookingRepoPG) find(db *gorm.DB, id string) (*BookingSchema, error) {
	var model BookingSchema
	if err := db.Where("external_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}
	return &model, nil
}
