package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DisputeType categorizes why a dispute was opened. Resolution belongs to a
// separate moderation subsystem; the core only ever creates disputes.
type DisputeType string

const (
	DisputeTypeCancellation DisputeType = "cancellation"
)

// Dispute is the record opened automatically when a booking enters the
// disputed status.
type Dispute struct {
	ID          uuid.UUID   `json:"id"`
	BookingID   uuid.UUID   `json:"booking_id"`
	InitiatedBy uuid.UUID   `json:"initiated_by"`
	Type        DisputeType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewDispute opens a dispute for a booking that just entered the disputed
// status, describing the transition that triggered it.
func NewDispute(bookingID, initiatedBy uuid.UUID, fromStatus, toStatus Status) *Dispute {
	return &Dispute{
		ID:          uuid.New(),
		BookingID:   bookingID,
		InitiatedBy: initiatedBy,
		Type:        DisputeTypeCancellation,
		Title:       "Booking dispute",
		Description: fmt.Sprintf("Dispute opened on transition from %s to %s", fromStatus, toStatus),
		CreatedAt:   time.Now().UTC(),
	}
}
