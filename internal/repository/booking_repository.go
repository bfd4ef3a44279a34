package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReservationNumber string          `gorm:"uniqueIndex;not null;size:20"`
	Kind              string          `gorm:"not null;size:20"`
	ResourceID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	GuestID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	HostID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status            string          `gorm:"not null;size:30;index"`
	StartAt           time.Time       `gorm:"not null"`
	EndAt             time.Time       `gorm:"not null"`
	PartySize         int             `gorm:"not null"`
	Price             json.RawMessage `gorm:"type:jsonb;not null"`
	SpecialRequests   string          `gorm:"size:1000"`
	ProviderID        *uuid.UUID      `gorm:"type:uuid;index"`
	Duration          json.RawMessage `gorm:"type:jsonb"`
	DeliveryMethod    string          `gorm:"size:50"`
	ConfirmedAt       *time.Time      `gorm:""`
	CompletedAt       *time.Time      `gorm:""`
	CancellationDate  *time.Time      `gorm:""`
	CancelReason      string          `gorm:"size:500"`
	Version           int64           `gorm:"not null;default:1"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := dbOr(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its reservation number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := dbOr(ctx, r.db).Where("reservation_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByGuestID retrieves bookings made by a guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "guest_id = ?", guestID, page, limit)
}

// FindByHostID retrieves bookings against a host's resources with pagination.
func (r *GormBookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "host_id = ?", hostID, page, limit)
}

func (r *GormBookingRepository) findPaged(ctx context.Context, cond string, arg uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db := dbOr(ctx, r.db)

	var total int64
	if err := db.Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := dbOr(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}
	if err := dbOr(ctx, r.db).Create(model).Error; err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	result := dbOr(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"confirmed_at":      model.ConfirmedAt,
			"completed_at":      model.CompletedAt,
			"cancellation_date": model.CancellationDate,
			"cancel_reason":     model.CancelReason,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	priceJSON, err := json.Marshal(bk.Price())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price: %w", err)
	}

	var durationJSON json.RawMessage
	if bk.Duration() != nil {
		data, err := json.Marshal(bk.Duration())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal duration: %w", err)
		}
		durationJSON = data
	}

	return &BookingModel{
		ID:                bk.ID(),
		ReservationNumber: bk.ReservationNumber(),
		Kind:              string(bk.Kind()),
		ResourceID:        bk.ResourceID(),
		GuestID:           bk.GuestID(),
		HostID:            bk.HostID(),
		Status:            string(bk.Status()),
		StartAt:           bk.Interval().Start,
		EndAt:             bk.Interval().End,
		PartySize:         bk.PartySize(),
		Price:             priceJSON,
		SpecialRequests:   bk.SpecialRequests(),
		ProviderID:        bk.ProviderID(),
		Duration:          durationJSON,
		DeliveryMethod:    bk.DeliveryMethod(),
		ConfirmedAt:       bk.ConfirmedAt(),
		CompletedAt:       bk.CompletedAt(),
		CancellationDate:  bk.CancellationDate(),
		CancelReason:      bk.CancelReason(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var price bookingDomain.PriceQuote
	if err := json.Unmarshal(m.Price, &price); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price: %w", err)
	}

	var duration *calendar.Duration
	if len(m.Duration) > 0 {
		var d calendar.Duration
		if err := json.Unmarshal(m.Duration, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal duration: %w", err)
		}
		duration = &d
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.ReservationNumber,
		bookingDomain.Kind(m.Kind),
		m.ResourceID,
		m.GuestID,
		m.HostID,
		status,
		calendar.Interval{Start: m.StartAt, End: m.EndAt},
		m.PartySize,
		price,
		m.SpecialRequests,
		m.ProviderID,
		duration,
		m.DeliveryMethod,
		m.ConfirmedAt,
		m.CompletedAt,
		m.CancellationDate,
		m.CancelReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
