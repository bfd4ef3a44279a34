package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
)

const reservationNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Kind distinguishes accommodation stays from provider service appointments.
type Kind string

const (
	KindAccommodation Kind = "accommodation"
	KindService       Kind = "service"
)

// IsValid returns true if the booking kind is recognized.
func (k Kind) IsValid() bool {
	return k == KindAccommodation || k == KindService
}

// Booking is the aggregate root for the reservation domain. Its interval must
// have had zero overlapping calendar blocks at creation time; the orchestrator
// enforces that transactionally.
type Booking struct {
	id                uuid.UUID
	reservationNumber string
	kind              Kind
	resourceID        uuid.UUID
	guestID           uuid.UUID
	hostID            uuid.UUID
	status            Status
	interval          calendar.Interval
	partySize         int
	price             PriceQuote
	specialRequests   string

	// Service bookings only.
	providerID     *uuid.UUID
	duration       *calendar.Duration
	deliveryMethod string

	confirmedAt      *time.Time
	completedAt      *time.Time
	cancellationDate *time.Time
	cancelReason     string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReservationNumber creates a reservation number in the format "RV-XXXXXX".
func generateReservationNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(reservationNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate reservation number: %w", err)
		}
		result[i] = reservationNumberChars[n.Int64()]
	}
	return "RV-" + string(result), nil
}

// NewAccommodationBooking creates a new accommodation Booking with status=pending.
func NewAccommodationBooking(
	resourceID uuid.UUID,
	guestID uuid.UUID,
	hostID uuid.UUID,
	interval calendar.Interval,
	partySize int,
	price PriceQuote,
	specialRequests string,
) (*Booking, error) {
	return newBooking(KindAccommodation, resourceID, guestID, hostID, interval, partySize, price, specialRequests)
}

// NewServiceBooking creates a new service Booking with status=pending. The
// occupancy interval is [scheduledStart, scheduledStart + duration).
func NewServiceBooking(
	providerID uuid.UUID,
	guestID uuid.UUID,
	hostID uuid.UUID,
	scheduledStart time.Time,
	duration calendar.Duration,
	deliveryMethod string,
	partySize int,
	price PriceQuote,
	specialRequests string,
) (*Booking, error) {
	if err := duration.Validate(); err != nil {
		return nil, err
	}
	interval, err := duration.Interval(scheduledStart)
	if err != nil {
		return nil, err
	}
	bk, err := newBooking(KindService, providerID, guestID, hostID, interval, partySize, price, specialRequests)
	if err != nil {
		return nil, err
	}
	pid := providerID
	d := duration
	bk.providerID = &pid
	bk.duration = &d
	bk.deliveryMethod = deliveryMethod
	return bk, nil
}

func newBooking(
	kind Kind,
	resourceID uuid.UUID,
	guestID uuid.UUID,
	hostID uuid.UUID,
	interval calendar.Interval,
	partySize int,
	price PriceQuote,
	specialRequests string,
) (*Booking, error) {
	if resourceID == uuid.Nil {
		return nil, domain.NewFieldValidationError("resource_id", "resource ID is required")
	}
	if guestID == uuid.Nil {
		return nil, domain.NewFieldValidationError("guest_id", "guest ID is required")
	}
	if hostID == uuid.Nil {
		return nil, domain.NewFieldValidationError("host_id", "host ID is required")
	}
	if guestID == hostID {
		return nil, domain.NewFieldValidationError("guest_id", "guests cannot book their own resource")
	}
	if partySize <= 0 {
		return nil, domain.NewFieldValidationError("party_size", "party size must be positive")
	}
	if price.Total <= 0 {
		return nil, domain.NewFieldValidationError("price", "price total must be positive")
	}

	number, err := generateReservationNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                uuid.New(),
		reservationNumber: number,
		kind:              kind,
		resourceID:        resourceID,
		guestID:           guestID,
		hostID:            hostID,
		status:            StatusPending,
		interval:          interval,
		partySize:         partySize,
		price:             price,
		specialRequests:   specialRequests,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reservationNumber string,
	kind Kind,
	resourceID uuid.UUID,
	guestID uuid.UUID,
	hostID uuid.UUID,
	status Status,
	interval calendar.Interval,
	partySize int,
	price PriceQuote,
	specialRequests string,
	providerID *uuid.UUID,
	duration *calendar.Duration,
	deliveryMethod string,
	confirmedAt *time.Time,
	completedAt *time.Time,
	cancellationDate *time.Time,
	cancelReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		reservationNumber: reservationNumber,
		kind:              kind,
		resourceID:        resourceID,
		guestID:           guestID,
		hostID:            hostID,
		status:            status,
		interval:          interval,
		partySize:         partySize,
		price:             price,
		specialRequests:   specialRequests,
		providerID:        providerID,
		duration:          duration,
		deliveryMethod:    deliveryMethod,
		confirmedAt:       confirmedAt,
		completedAt:       completedAt,
		cancellationDate:  cancellationDate,
		cancelReason:      cancelReason,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ReservationNumber returns the human-readable reservation number.
func (b *Booking) ReservationNumber() string { return b.reservationNumber }

// Kind returns whether this is an accommodation or service booking.
func (b *Booking) Kind() Kind { return b.kind }

// ResourceID returns the id of the booked resource (listing or provider calendar).
func (b *Booking) ResourceID() uuid.UUID { return b.resourceID }

// GuestID returns the booking guest's user ID.
func (b *Booking) GuestID() uuid.UUID { return b.guestID }

// HostID returns the resource owner's user ID.
func (b *Booking) HostID() uuid.UUID { return b.hostID }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Interval returns the occupancy interval.
func (b *Booking) Interval() calendar.Interval { return b.interval }

// PartySize returns the number of guests.
func (b *Booking) PartySize() int { return b.partySize }

// Price returns the price breakdown captured at creation.
func (b *Booking) Price() PriceQuote { return b.price }

// SpecialRequests returns the guest's free-form requests.
func (b *Booking) SpecialRequests() string { return b.specialRequests }

// ProviderID returns the service provider's ID, or nil for accommodation bookings.
func (b *Booking) ProviderID() *uuid.UUID { return b.providerID }

// Duration returns the declared service duration, or nil for accommodation bookings.
func (b *Booking) Duration() *calendar.Duration { return b.duration }

// DeliveryMethod returns how the service is delivered, or "" for accommodation bookings.
func (b *Booking) DeliveryMethod() string { return b.deliveryMethod }

// ConfirmedAt returns the time the booking was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CompletedAt returns the time the booking was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancellationDate returns the time the booking was cancelled.
func (b *Booking) CancellationDate() *time.Time { return b.cancellationDate }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Transition moves the booking to the target status, stamping the
// status-specific timestamp. Transitions outside the state machine table fail
// with InvalidTransition and leave the booking untouched.
func (b *Booking) Transition(to Status, reason string) error {
	if !to.IsValid() {
		return domain.NewInvalidStatusError(string(to))
	}
	if !b.status.CanTransitionTo(to) {
		return domain.NewInvalidTransitionError(string(b.status), string(to))
	}
	now := time.Now().UTC()
	switch to {
	case StatusConfirmed:
		b.confirmedAt = &now
	case StatusCompleted:
		b.completedAt = &now
	case StatusCancelled:
		b.cancellationDate = &now
		b.cancelReason = reason
	}
	b.status = to
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
