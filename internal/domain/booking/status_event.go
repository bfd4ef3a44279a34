package booking

import (
	"time"

	"github.com/google/uuid"
)

// StatusEvent is one append-only ledger entry recording a status transition.
// Entries are never mutated or deleted; the ledger is the sole source of truth
// for why a booking reached its current state.
type StatusEvent struct {
	ID         uuid.UUID         `json:"id"`
	BookingID  uuid.UUID         `json:"booking_id"`
	FromStatus *Status           `json:"from_status,omitempty"`
	ToStatus   Status            `json:"to_status"`
	Reason     string            `json:"reason,omitempty"`
	ChangedBy  uuid.UUID         `json:"changed_by"`
	ChangedAt  time.Time         `json:"changed_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewStatusEvent records one transition. fromStatus is nil for the creation event.
func NewStatusEvent(bookingID uuid.UUID, fromStatus *Status, toStatus Status, reason string, changedBy uuid.UUID, metadata map[string]string) *StatusEvent {
	return &StatusEvent{
		ID:         uuid.New(),
		BookingID:  bookingID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Reason:     reason,
		ChangedBy:  changedBy,
		ChangedAt:  time.Now().UTC(),
		Metadata:   metadata,
	}
}
