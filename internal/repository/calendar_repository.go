package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"gorm.io/gorm"
)

// BlockModel is the GORM model for the calendar_blocks table. The no-overlap
// invariant is additionally enforced by a range-exclusion constraint on
// (resource_id, span); see migrations.
type BlockModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ResourceID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	StartAt       time.Time  `gorm:"not null;index"`
	EndAt         time.Time  `gorm:"not null"`
	Kind          string     `gorm:"not null;size:20"`
	BookingID     *uuid.UUID `gorm:"type:uuid;index"`
	Reason        string     `gorm:"size:500"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	HoldExpiresAt *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BlockModel) TableName() string {
	return "calendar_blocks"
}

// GormBlockRepository is the GORM-based implementation of calendar.BlockRepository.
type GormBlockRepository struct {
	db *gorm.DB
}

// NewGormBlockRepository creates a new GormBlockRepository.
func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

// FindOverlapping returns blocks whose [start, end) intersects the interval,
// skipping pending holds that lapsed before now.
func (r *GormBlockRepository) FindOverlapping(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval, now time.Time) ([]*calendar.Block, error) {
	var models []BlockModel
	err := dbOr(ctx, r.db).
		Where("resource_id = ? AND start_at < ? AND end_at > ?", resourceID, interval.End, interval.Start).
		Where("hold_expires_at IS NULL OR hold_expires_at >= ?", now).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping blocks: %w", err)
	}
	return toDomainBlocks(models), nil
}

// FindByResource returns all blocks for the resource intersecting the interval,
// expired holds included: the calendar view decides what to surface.
func (r *GormBlockRepository) FindByResource(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval) ([]*calendar.Block, error) {
	var models []BlockModel
	err := dbOr(ctx, r.db).
		Where("resource_id = ? AND start_at < ? AND end_at > ?", resourceID, interval.End, interval.Start).
		Order("start_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find blocks for resource: %w", err)
	}
	return toDomainBlocks(models), nil
}

// FindByBookingID returns the blocks owned by a booking.
func (r *GormBlockRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*calendar.Block, error) {
	var models []BlockModel
	err := dbOr(ctx, r.db).
		Where("booking_id = ?", bookingID).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find blocks for booking: %w", err)
	}
	return toDomainBlocks(models), nil
}

// Save inserts a block unconditionally. The exclusion constraint turns a
// racing insert into a StorageConflict at commit.
func (r *GormBlockRepository) Save(ctx context.Context, block *calendar.Block) error {
	model := toBlockModel(block)
	if err := dbOr(ctx, r.db).Create(model).Error; err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to save calendar block: %w", err)
	}
	return nil
}

// ClearHoldExpiry makes a booking's blocks hold indefinitely.
func (r *GormBlockRepository) ClearHoldExpiry(ctx context.Context, bookingID uuid.UUID) error {
	err := dbOr(ctx, r.db).
		Model(&BlockModel{}).
		Where("booking_id = ?", bookingID).
		Update("hold_expires_at", nil).Error
	if err != nil {
		return fmt.Errorf("failed to clear hold expiry: %w", err)
	}
	return nil
}

// DeleteByBookingID removes the blocks owned by a booking.
func (r *GormBlockRepository) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	if err := dbOr(ctx, r.db).Where("booking_id = ?", bookingID).Delete(&BlockModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete blocks for booking: %w", err)
	}
	return nil
}

// DeleteByRange removes blocks of the given kind exactly matching the resource and interval.
func (r *GormBlockRepository) DeleteByRange(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval, kind calendar.BlockKind) error {
	err := dbOr(ctx, r.db).
		Where("resource_id = ? AND start_at = ? AND end_at = ? AND kind = ?", resourceID, interval.Start, interval.End, string(kind)).
		Delete(&BlockModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete blocks in range: %w", err)
	}
	return nil
}

// DeleteExpiredHolds reaps pending holds that lapsed before the cutoff.
func (r *GormBlockRepository) DeleteExpiredHolds(ctx context.Context, resourceID uuid.UUID, cutoff time.Time) (int64, error) {
	result := dbOr(ctx, r.db).
		Where("resource_id = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?", resourceID, cutoff).
		Delete(&BlockModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reap expired holds: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Conversion helpers ---

func toBlockModel(b *calendar.Block) *BlockModel {
	return &BlockModel{
		ID:            b.ID,
		ResourceID:    b.ResourceID,
		StartAt:       b.Interval.Start,
		EndAt:         b.Interval.End,
		Kind:          string(b.Kind),
		BookingID:     b.BookingID,
		Reason:        b.Reason,
		CreatedBy:     b.CreatedBy,
		HoldExpiresAt: b.HoldExpiresAt,
		CreatedAt:     b.CreatedAt,
	}
}

func toDomainBlock(m *BlockModel) *calendar.Block {
	return &calendar.Block{
		ID:            m.ID,
		ResourceID:    m.ResourceID,
		Interval:      calendar.Interval{Start: m.StartAt, End: m.EndAt},
		Kind:          calendar.BlockKind(m.Kind),
		BookingID:     m.BookingID,
		Reason:        m.Reason,
		CreatedBy:     m.CreatedBy,
		HoldExpiresAt: m.HoldExpiresAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toDomainBlocks(models []BlockModel) []*calendar.Block {
	blocks := make([]*calendar.Block, len(models))
	for i := range models {
		blocks[i] = toDomainBlock(&models[i])
	}
	return blocks
}
