package calendar

import (
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain"
)

// BlockKind denotes why a calendar block exists.
type BlockKind string

const (
	BlockKindBooking     BlockKind = "booking"
	BlockKindMaintenance BlockKind = "maintenance"
	BlockKindBlocked     BlockKind = "blocked"
)

// IsValid returns true if the block kind is recognized.
func (k BlockKind) IsValid() bool {
	switch k {
	case BlockKindBooking, BlockKindMaintenance, BlockKindBlocked:
		return true
	}
	return false
}

// Block is a stored reservation of a resource for an interval. Any existing
// block makes the covered interval exclusive: no two blocks for the same
// resource may overlap.
type Block struct {
	ID         uuid.UUID  `json:"id"`
	ResourceID uuid.UUID  `json:"resource_id"`
	Interval   Interval   `json:"interval"`
	Kind       BlockKind  `json:"kind"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	// HoldExpiresAt bounds the hold of a still-pending booking. Nil means the
	// block holds indefinitely. Cleared when the booking is confirmed.
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Expired reports whether a pending hold has lapsed.
func (b *Block) Expired(now time.Time) bool {
	return b.HoldExpiresAt != nil && b.HoldExpiresAt.Before(now)
}

// NewBlock creates a calendar block. A booking id is required iff kind=booking.
func NewBlock(resourceID uuid.UUID, interval Interval, kind BlockKind, reason string, createdBy uuid.UUID, bookingID *uuid.UUID) (*Block, error) {
	if resourceID == uuid.Nil {
		return nil, domain.NewFieldValidationError("resource_id", "resource ID is required")
	}
	if !kind.IsValid() {
		return nil, domain.NewFieldValidationError("kind", "invalid block kind")
	}
	if kind == BlockKindBooking && (bookingID == nil || *bookingID == uuid.Nil) {
		return nil, domain.NewFieldValidationError("booking_id", "booking blocks require a booking ID")
	}
	if kind != BlockKindBooking && bookingID != nil {
		return nil, domain.NewFieldValidationError("booking_id", "only booking blocks may carry a booking ID")
	}
	return &Block{
		ID:         uuid.New(),
		ResourceID: resourceID,
		Interval:   interval,
		Kind:       kind,
		BookingID:  bookingID,
		Reason:     reason,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
