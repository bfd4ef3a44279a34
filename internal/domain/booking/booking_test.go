package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInterval(t *testing.T) calendar.Interval {
	t.Helper()
	iv, err := calendar.NewInterval(
		time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 4, 11, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return iv
}

func testQuote() PriceQuote {
	return PriceQuote{Base: 36000, Fees: 3600, Taxes: 2880, Total: 42480, Currency: "USD"}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewAccommodationBooking(uuid.New(), uuid.New(), uuid.New(), testInterval(t), 2, testQuote(), "")
	require.NoError(t, err)
	return bk
}

func TestNewAccommodationBooking(t *testing.T) {
	resourceID, guestID, hostID := uuid.New(), uuid.New(), uuid.New()

	bk, err := NewAccommodationBooking(resourceID, guestID, hostID, testInterval(t), 3, testQuote(), "late arrival")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, KindAccommodation, bk.Kind())
	assert.Equal(t, resourceID, bk.ResourceID())
	assert.Equal(t, guestID, bk.GuestID())
	assert.Equal(t, hostID, bk.HostID())
	assert.Equal(t, 3, bk.PartySize())
	assert.Equal(t, "late arrival", bk.SpecialRequests())
	assert.Equal(t, int64(1), bk.Version())
	assert.Nil(t, bk.ProviderID())
	assert.Nil(t, bk.Duration())

	assert.True(t, strings.HasPrefix(bk.ReservationNumber(), "RV-"))
	assert.Len(t, bk.ReservationNumber(), 9)
}

func TestNewBookingValidation(t *testing.T) {
	resourceID, guestID, hostID := uuid.New(), uuid.New(), uuid.New()
	iv := testInterval(t)

	_, err := NewAccommodationBooking(uuid.Nil, guestID, hostID, iv, 2, testQuote(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	_, err = NewAccommodationBooking(resourceID, uuid.Nil, hostID, iv, 2, testQuote(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	_, err = NewAccommodationBooking(resourceID, guestID, guestID, iv, 2, testQuote(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed), "guests cannot book their own resource")

	_, err = NewAccommodationBooking(resourceID, guestID, hostID, iv, 0, testQuote(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))

	_, err = NewAccommodationBooking(resourceID, guestID, hostID, iv, 2, PriceQuote{}, "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestNewServiceBooking(t *testing.T) {
	providerID, guestID, hostID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	duration := calendar.Duration{Value: 2, Unit: calendar.UnitHours}

	bk, err := NewServiceBooking(providerID, guestID, hostID, start, duration, "on_site", 1, testQuote(), "")
	require.NoError(t, err)

	assert.Equal(t, KindService, bk.Kind())
	require.NotNil(t, bk.ProviderID())
	assert.Equal(t, providerID, *bk.ProviderID())
	require.NotNil(t, bk.Duration())
	assert.Equal(t, duration, *bk.Duration())
	assert.Equal(t, "on_site", bk.DeliveryMethod())
	assert.Equal(t, start, bk.Interval().Start)
	assert.Equal(t, start.Add(2*time.Hour), bk.Interval().End)

	_, err = NewServiceBooking(providerID, guestID, hostID, start, calendar.Duration{Value: 0, Unit: calendar.UnitHours}, "", 1, testQuote(), "")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestTransitionHappyPath(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Transition(StatusConfirmed, ""))
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.NotNil(t, bk.ConfirmedAt())

	require.NoError(t, bk.Transition(StatusActive, ""))
	require.NoError(t, bk.Transition(StatusCompleted, ""))
	assert.NotNil(t, bk.CompletedAt())
}

func TestTransitionCancellation(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Transition(StatusCancelled, "change of plans"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.NotNil(t, bk.CancellationDate())
	assert.Equal(t, "change of plans", bk.CancelReason())

	// Cancelled is terminal.
	err := bk.Transition(StatusConfirmed, "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Transition(StatusCompleted, "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
	assert.Equal(t, StatusPending, bk.Status(), "failed transition must leave the booking untouched")
	assert.Nil(t, bk.CompletedAt())

	err = bk.Transition(Status("shipped"), "")
	assert.True(t, domain.IsKind(err, domain.KindInvalidStatus))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestTransitionDisputeFromCompleted(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Transition(StatusConfirmed, ""))
	require.NoError(t, bk.Transition(StatusActive, ""))
	require.NoError(t, bk.Transition(StatusCompleted, ""))

	require.NoError(t, bk.Transition(StatusDisputed, "damage claim"))
	require.NoError(t, bk.Transition(StatusCancelled, "resolved against guest"))
	assert.True(t, bk.Status().IsTerminal())
}

func TestIncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, int64(1), bk.Version())
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}

func TestReservationNumbersAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n, err := generateReservationNumber()
		require.NoError(t, err)
		assert.False(t, seen[n], "duplicate reservation number %s", n)
		seen[n] = true
	}
}
