package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlockRepository defines the persistence contract for calendar blocks. All
// writes happen inside the orchestrator's transaction boundary; implementations
// must honor a transaction handle carried in the context.
type BlockRepository interface {
	// FindOverlapping returns blocks for the resource whose intervals intersect
	// the given interval, excluding holds that expired before now.
	FindOverlapping(ctx context.Context, resourceID uuid.UUID, interval Interval, now time.Time) ([]*Block, error)

	// FindByResource returns all blocks for the resource intersecting [from, to).
	FindByResource(ctx context.Context, resourceID uuid.UUID, interval Interval) ([]*Block, error)

	// FindByBookingID returns the blocks owned by a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Block, error)

	// Save inserts a block unconditionally. The caller is responsible for
	// having checked availability within the same transaction.
	Save(ctx context.Context, block *Block) error

	// ClearHoldExpiry makes a booking's blocks hold indefinitely, used when a
	// pending booking is confirmed inside the hold window.
	ClearHoldExpiry(ctx context.Context, bookingID uuid.UUID) error

	// DeleteByBookingID removes the blocks owned by a booking.
	DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error

	// DeleteByRange removes blocks of the given kind exactly matching the
	// resource and interval.
	DeleteByRange(ctx context.Context, resourceID uuid.UUID, interval Interval, kind BlockKind) error

	// DeleteExpiredHolds removes booking blocks whose pending hold lapsed
	// before the cutoff. Returns the number of blocks reaped.
	DeleteExpiredHolds(ctx context.Context, resourceID uuid.UUID, cutoff time.Time) (int64, error)
}
