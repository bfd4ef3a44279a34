// Package events defines the topics and payloads exchanged with other
// marketplace services over Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicReservationEvents = "reservation.events"
	TopicPaymentEvents     = "payment.events"
)

// Reservation event types, one per lifecycle change.
const (
	BookingRequested = "booking.requested"
	BookingConfirmed = "booking.confirmed"
	BookingActivated = "booking.activated"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
	BookingDisputed  = "booking.disputed"
)

// Payment event types consumed from the payment service.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// BookingRequestedEvent is published when a booking is created (pending).
type BookingRequestedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	ReservationNumber string    `json:"reservation_number"`
	Kind              string    `json:"kind"`
	ResourceID        uuid.UUID `json:"resource_id"`
	GuestID           uuid.UUID `json:"guest_id"`
	HostID            uuid.UUID `json:"host_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	TotalCents        int64     `json:"total_cents"`
	Currency          string    `json:"currency"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published for every successful transition.
type BookingStatusChangedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	ReservationNumber string    `json:"reservation_number"`
	FromStatus        string    `json:"from_status"`
	ToStatus          string    `json:"to_status"`
	Reason            string    `json:"reason,omitempty"`
	ChangedBy         uuid.UUID `json:"changed_by"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is the confirmation callback from the payment
// service; it drives the pending to confirmed transition.
type PaymentSucceededEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	PayerID    uuid.UUID `json:"payer_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentFailedEvent reports a failed charge for a pending booking.
type PaymentFailedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	PayerID    uuid.UUID `json:"payer_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
