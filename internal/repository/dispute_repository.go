package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"gorm.io/gorm"
)

// DisputeModel is the GORM model for the disputes table.
type DisputeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InitiatedBy uuid.UUID `gorm:"type:uuid;not null"`
	Type        string    `gorm:"not null;size:30"`
	Title       string    `gorm:"not null;size:200"`
	Description string    `gorm:"size:1000"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DisputeModel) TableName() string {
	return "disputes"
}

// GormDisputeRepository is the GORM-based implementation of booking.DisputeRepository.
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository.
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// Save persists a new dispute.
func (r *GormDisputeRepository) Save(ctx context.Context, d *bookingDomain.Dispute) error {
	model := DisputeModel{
		ID:          d.ID,
		BookingID:   d.BookingID,
		InitiatedBy: d.InitiatedBy,
		Type:        string(d.Type),
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
	if err := dbOr(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save dispute: %w", err)
	}
	return nil
}

// FindByBookingID returns the disputes opened for a booking.
func (r *GormDisputeRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.Dispute, error) {
	var models []DisputeModel
	err := dbOr(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find disputes: %w", err)
	}

	disputes := make([]*bookingDomain.Dispute, len(models))
	for i, m := range models {
		disputes[i] = &bookingDomain.Dispute{
			ID:          m.ID,
			BookingID:   m.BookingID,
			InitiatedBy: m.InitiatedBy,
			Type:        bookingDomain.DisputeType(m.Type),
			Title:       m.Title,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
		}
	}
	return disputes, nil
}
