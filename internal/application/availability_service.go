package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/clock"
	"github.com/lodgical/service-reservation/internal/domain"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"go.uber.org/zap"
)

// Provider slot template: hourly slots between these hours, local to the
// provider's calendar day.
const (
	slotDayStartHour = 9
	slotDayEndHour   = 18
)

// TxManager runs a function inside one transaction and serializes writers per
// resource. The repository package provides the Postgres implementation.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockResource(ctx context.Context, resourceID uuid.UUID) error
}

// DayAvailability is one entry of the derived calendar view.
type DayAvailability struct {
	Date      time.Time         `json:"date"`
	Available bool              `json:"available"`
	Conflicts []*calendar.Block `json:"conflicts,omitempty"`
}

// Slot is one entry of a provider's daily slot template.
type Slot struct {
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Available bool       `json:"available"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
}

// AvailabilityService is the availability engine: it decides whether an
// interval is free, derives calendar views, and owns the calendar-block
// lifecycle. It only ever mutates blocks at the orchestrator's direction.
type AvailabilityService struct {
	blocks calendar.BlockRepository
	txm    TxManager
	clock  clock.Clock
	logger *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(blocks calendar.BlockRepository, txm TxManager, clk clock.Clock, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		blocks: blocks,
		txm:    txm,
		clock:  clk,
		logger: logger,
	}
}

// IsAvailable reports whether no existing calendar block for the resource
// overlaps the interval. Expired pending holds do not count.
func (s *AvailabilityService) IsAvailable(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval) (bool, error) {
	overlapping, err := s.blocks.FindOverlapping(ctx, resourceID, interval, s.clock.Now())
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// IsProviderAvailable reports whether the provider's calendar is free for
// [start, start+duration). The same true interval-intersection test as
// accommodation availability is used.
func (s *AvailabilityService) IsProviderAvailable(ctx context.Context, providerID uuid.UUID, start time.Time, duration calendar.Duration) (bool, error) {
	if err := duration.Validate(); err != nil {
		return false, err
	}
	interval, err := duration.Interval(start)
	if err != nil {
		return false, err
	}
	return s.IsAvailable(ctx, providerID, interval)
}

// Calendar produces one entry per calendar day in [from, to], marking a day
// unavailable iff any block intersects it. This is a derived read view.
func (s *AvailabilityService) Calendar(ctx context.Context, resourceID uuid.UUID, from, to time.Time) ([]DayAvailability, error) {
	if to.Before(from) {
		return nil, domain.NewFieldValidationError("to", "calendar range end must not precede start")
	}

	first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	span := calendar.Interval{Start: first, End: last.Add(24 * time.Hour)}

	blocks, err := s.blocks.FindByResource(ctx, resourceID, span)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var days []DayAvailability
	for day := first; !day.After(last); day = day.Add(24 * time.Hour) {
		entry := DayAvailability{Date: day, Available: true}
		for _, b := range blocks {
			if b.Expired(now) {
				continue
			}
			if b.Interval.IntersectsDay(day) {
				entry.Available = false
				entry.Conflicts = append(entry.Conflicts, b)
			}
		}
		days = append(days, entry)
	}
	return days, nil
}

// ProviderSlots generates the provider's hourly slot template (09:00-18:00)
// for the given date and marks each slot that intersects a held booking.
func (s *AvailabilityService) ProviderSlots(ctx context.Context, providerID uuid.UUID, date time.Time) ([]Slot, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	span := calendar.Interval{Start: dayStart, End: dayStart.Add(24 * time.Hour)}

	blocks, err := s.blocks.FindByResource(ctx, providerID, span)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	slots := make([]Slot, 0, slotDayEndHour-slotDayStartHour)
	for hour := slotDayStartHour; hour < slotDayEndHour; hour++ {
		slot := Slot{
			Start:     dayStart.Add(time.Duration(hour) * time.Hour),
			End:       dayStart.Add(time.Duration(hour+1) * time.Hour),
			Available: true,
		}
		window := calendar.Interval{Start: slot.Start, End: slot.End}
		for _, b := range blocks {
			if b.Expired(now) {
				continue
			}
			if b.Interval.Overlaps(window) {
				slot.Available = false
				slot.BookingID = b.BookingID
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Block inserts a calendar block unconditionally; the caller is responsible
// for having checked availability inside the same transaction. Expired pending
// holds covering the interval are reaped first so they cannot trip the
// exclusion constraint.
func (s *AvailabilityService) Block(
	ctx context.Context,
	resourceID uuid.UUID,
	interval calendar.Interval,
	kind calendar.BlockKind,
	reason string,
	createdBy uuid.UUID,
	bookingID *uuid.UUID,
	holdExpiresAt *time.Time,
) (*calendar.Block, error) {
	block, err := calendar.NewBlock(resourceID, interval, kind, reason, createdBy, bookingID)
	if err != nil {
		return nil, err
	}
	block.HoldExpiresAt = holdExpiresAt

	reaped, err := s.blocks.DeleteExpiredHolds(ctx, resourceID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if reaped > 0 {
		s.logger.Info("reaped expired pending holds",
			zap.String("resource_id", resourceID.String()),
			zap.Int64("count", reaped),
		)
	}

	if err := s.blocks.Save(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// Unblock deletes the calendar blocks owned by a booking.
func (s *AvailabilityService) Unblock(ctx context.Context, bookingID uuid.UUID) error {
	return s.blocks.DeleteByBookingID(ctx, bookingID)
}

// UnblockRange deletes host blocks exactly matching the resource and interval.
func (s *AvailabilityService) UnblockRange(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval) error {
	return s.blocks.DeleteByRange(ctx, resourceID, interval, calendar.BlockKindBlocked)
}

// BlocksForBooking returns the blocks owned by a booking.
func (s *AvailabilityService) BlocksForBooking(ctx context.Context, bookingID uuid.UUID) ([]*calendar.Block, error) {
	return s.blocks.FindByBookingID(ctx, bookingID)
}

// ConfirmHold makes a booking's blocks permanent once the booking is confirmed.
func (s *AvailabilityService) ConfirmHold(ctx context.Context, bookingID uuid.UUID) error {
	return s.blocks.ClearHoldExpiry(ctx, bookingID)
}

// HostBlockDates blocks a date range on behalf of the host, failing with
// AlreadyUnavailable when any part of the range is occupied. Check and write
// run in one transaction under the per-resource lock.
func (s *AvailabilityService) HostBlockDates(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval, reason string, createdBy uuid.UUID) (*calendar.Block, error) {
	var block *calendar.Block
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.txm.LockResource(txCtx, resourceID); err != nil {
			return err
		}
		available, err := s.IsAvailable(txCtx, resourceID, interval)
		if err != nil {
			return err
		}
		if !available {
			return domain.NewAlreadyUnavailableError(resourceID.String())
		}
		block, err = s.Block(txCtx, resourceID, interval, calendar.BlockKindBlocked, reason, createdBy, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}
