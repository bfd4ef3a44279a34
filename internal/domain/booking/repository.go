package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
// Implementations must honor a transaction handle carried in the context.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable reservation number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByGuestID retrieves bookings made by a guest with pagination.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHostID retrieves bookings against a host's resources with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

// StatusEventRepository persists the append-only status ledger.
type StatusEventRepository interface {
	// Append writes one ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, event *StatusEvent) error

	// ListByBookingID returns a booking's ledger in change order.
	ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*StatusEvent, error)
}

// DisputeRepository persists dispute records opened by the orchestrator.
type DisputeRepository interface {
	// Save persists a new dispute.
	Save(ctx context.Context, dispute *Dispute) error

	// FindByBookingID returns the disputes opened for a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Dispute, error)
}
