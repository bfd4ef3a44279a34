package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"gorm.io/gorm"
)

// StatusEventModel is the GORM model for the booking_status_events ledger.
// Rows are append-only: no update or delete path exists.
type StatusEventModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	FromStatus *string         `gorm:"size:30"`
	ToStatus   string          `gorm:"not null;size:30"`
	Reason     string          `gorm:"size:500"`
	ChangedBy  uuid.UUID       `gorm:"type:uuid;not null"`
	ChangedAt  time.Time       `gorm:"not null;index"`
	Metadata   json.RawMessage `gorm:"type:jsonb"`
}

// TableName returns the table name for the GORM model.
func (StatusEventModel) TableName() string {
	return "booking_status_events"
}

// GormStatusEventRepository is the GORM-based implementation of booking.StatusEventRepository.
type GormStatusEventRepository struct {
	db *gorm.DB
}

// NewGormStatusEventRepository creates a new GormStatusEventRepository.
func NewGormStatusEventRepository(db *gorm.DB) *GormStatusEventRepository {
	return &GormStatusEventRepository{db: db}
}

// Append writes one ledger entry.
func (r *GormStatusEventRepository) Append(ctx context.Context, event *bookingDomain.StatusEvent) error {
	var metadata json.RawMessage
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		metadata = data
	}

	var from *string
	if event.FromStatus != nil {
		s := string(*event.FromStatus)
		from = &s
	}

	model := StatusEventModel{
		ID:         event.ID,
		BookingID:  event.BookingID,
		FromStatus: from,
		ToStatus:   string(event.ToStatus),
		Reason:     event.Reason,
		ChangedBy:  event.ChangedBy,
		ChangedAt:  event.ChangedAt,
		Metadata:   metadata,
	}
	if err := dbOr(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append status event: %w", err)
	}
	return nil
}

// ListByBookingID returns a booking's ledger in change order.
func (r *GormStatusEventRepository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.StatusEvent, error) {
	var models []StatusEventModel
	err := dbOr(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Order("changed_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list status events: %w", err)
	}

	events := make([]*bookingDomain.StatusEvent, len(models))
	for i := range models {
		ev, err := toDomainStatusEvent(&models[i])
		if err != nil {
			return nil, err
		}
		events[i] = ev
	}
	return events, nil
}

func toDomainStatusEvent(m *StatusEventModel) (*bookingDomain.StatusEvent, error) {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
	}

	var from *bookingDomain.Status
	if m.FromStatus != nil {
		s := bookingDomain.Status(*m.FromStatus)
		from = &s
	}

	return &bookingDomain.StatusEvent{
		ID:         m.ID,
		BookingID:  m.BookingID,
		FromStatus: from,
		ToStatus:   bookingDomain.Status(m.ToStatus),
		Reason:     m.Reason,
		ChangedBy:  m.ChangedBy,
		ChangedAt:  m.ChangedAt,
		Metadata:   metadata,
	}, nil
}
