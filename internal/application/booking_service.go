package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/clock"
	"github.com/lodgical/service-reservation/internal/domain"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"github.com/lodgical/service-reservation/internal/events"
	"github.com/lodgical/service-reservation/internal/platform/kafka"
	"go.uber.org/zap"
)

// EventPublisher publishes CloudEvents to the reservation event stream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateAccommodationRequest holds the data needed to book a stay.
type CreateAccommodationRequest struct {
	ResourceID      uuid.UUID  `json:"resource_id" binding:"required"`
	HostID          uuid.UUID  `json:"host_id" binding:"required"`
	CheckIn         time.Time  `json:"check_in" binding:"required"`
	CheckOut        *time.Time `json:"check_out"`
	PartySize       int        `json:"party_size" binding:"required"`
	SpecialRequests string     `json:"special_requests"`
}

// CreateServiceRequest holds the data needed to book a provider appointment.
type CreateServiceRequest struct {
	ProviderID      uuid.UUID         `json:"provider_id" binding:"required"`
	HostID          uuid.UUID         `json:"host_id" binding:"required"`
	ScheduledStart  time.Time         `json:"scheduled_start" binding:"required"`
	Duration        calendar.Duration `json:"duration" binding:"required"`
	DeliveryMethod  string            `json:"delivery_method"`
	PartySize       int               `json:"party_size" binding:"required"`
	SpecialRequests string            `json:"special_requests"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID                `json:"id"`
	ReservationNumber string                   `json:"reservation_number"`
	Kind              string                   `json:"kind"`
	ResourceID        uuid.UUID                `json:"resource_id"`
	GuestID           uuid.UUID                `json:"guest_id"`
	HostID            uuid.UUID                `json:"host_id"`
	Status            string                   `json:"status"`
	Interval          calendar.Interval        `json:"interval"`
	PartySize         int                      `json:"party_size"`
	Price             bookingDomain.PriceQuote `json:"price"`
	SpecialRequests   string                   `json:"special_requests,omitempty"`
	ProviderID        *uuid.UUID               `json:"provider_id,omitempty"`
	Duration          *calendar.Duration       `json:"duration,omitempty"`
	DeliveryMethod    string                   `json:"delivery_method,omitempty"`
	ConfirmedAt       *time.Time               `json:"confirmed_at,omitempty"`
	CompletedAt       *time.Time               `json:"completed_at,omitempty"`
	CancellationDate  *time.Time               `json:"cancellation_date,omitempty"`
	CancelReason      string                   `json:"cancel_reason,omitempty"`
	Version           int64                    `json:"version"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// sideEffect runs inside the status-update transaction when a booking enters
// its target status.
type sideEffect func(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.Status, actorID uuid.UUID) error

// BookingService is the booking orchestrator: it owns the state machine, the
// transaction boundary around create/update, the status ledger, and dispute
// opening.
type BookingService struct {
	bookings     bookingDomain.Repository
	statusEvents bookingDomain.StatusEventRepository
	disputes     bookingDomain.DisputeRepository
	availability *AvailabilityService
	pricing      bookingDomain.PricingOracle
	txm          TxManager
	producer     EventPublisher
	clock        clock.Clock
	logger       *zap.Logger

	// pendingHoldTTL bounds pending calendar holds; zero holds forever.
	pendingHoldTTL time.Duration

	sideEffects map[bookingDomain.Status]sideEffect
}

// BookingServiceOption configures a BookingService.
type BookingServiceOption func(*BookingService)

// WithPendingHoldTTL bounds how long a pending booking keeps its calendar hold.
func WithPendingHoldTTL(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.pendingHoldTTL = d
		}
	}
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	statusEvents bookingDomain.StatusEventRepository,
	disputes bookingDomain.DisputeRepository,
	availability *AvailabilityService,
	pricing bookingDomain.PricingOracle,
	txm TxManager,
	producer EventPublisher,
	clk clock.Clock,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings:     bookings,
		statusEvents: statusEvents,
		disputes:     disputes,
		availability: availability,
		pricing:      pricing,
		txm:          txm,
		producer:     producer,
		clock:        clk,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Table-driven side-effect dispatch: adding a status needs one entry here
	// plus its handler. Completed has no calendar effect.
	s.sideEffects = map[bookingDomain.Status]sideEffect{
		bookingDomain.StatusConfirmed: s.ensureCalendarBlock,
		bookingDomain.StatusCancelled: s.releaseCalendarBlock,
		bookingDomain.StatusDisputed:  s.openDispute,
	}
	return s
}

// CreateAccommodationBooking validates, prices, and atomically reserves a stay.
// The availability check and the calendar-block write run in one transaction
// under the per-resource lock; any failure aborts the whole unit of work.
func (s *BookingService) CreateAccommodationBooking(ctx context.Context, guestID uuid.UUID, req CreateAccommodationRequest) (*BookingDTO, error) {
	interval, err := calendar.NewStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	var bk *bookingDomain.Booking
	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.txm.LockResource(txCtx, req.ResourceID); err != nil {
			return err
		}

		available, err := s.availability.IsAvailable(txCtx, req.ResourceID, interval)
		if err != nil {
			return err
		}
		if !available {
			return domain.NewDatesUnavailableError(req.ResourceID.String())
		}

		quote, err := s.pricing.Quote(txCtx, req.ResourceID, interval, req.PartySize)
		if err != nil {
			return domain.NewPricingUnavailableError(err.Error())
		}

		bk, err = bookingDomain.NewAccommodationBooking(
			req.ResourceID,
			guestID,
			req.HostID,
			interval,
			req.PartySize,
			quote,
			req.SpecialRequests,
		)
		if err != nil {
			return err
		}

		return s.persistNewBooking(txCtx, bk, guestID)
	})
	if err != nil {
		return nil, err
	}

	s.publishRequested(ctx, bk)
	result := toBookingDTO(bk)
	return &result, nil
}

// CreateServiceBooking validates, prices, and atomically reserves a provider
// appointment for [scheduledStart, scheduledStart + duration).
func (s *BookingService) CreateServiceBooking(ctx context.Context, guestID uuid.UUID, req CreateServiceRequest) (*BookingDTO, error) {
	if err := req.Duration.Validate(); err != nil {
		return nil, err
	}
	interval, err := req.Duration.Interval(req.ScheduledStart)
	if err != nil {
		return nil, err
	}

	var bk *bookingDomain.Booking
	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.txm.LockResource(txCtx, req.ProviderID); err != nil {
			return err
		}

		available, err := s.availability.IsProviderAvailable(txCtx, req.ProviderID, req.ScheduledStart, req.Duration)
		if err != nil {
			return err
		}
		if !available {
			return domain.NewProviderUnavailableError(req.ProviderID.String())
		}

		quote, err := s.pricing.Quote(txCtx, req.ProviderID, interval, req.PartySize)
		if err != nil {
			return domain.NewPricingUnavailableError(err.Error())
		}

		bk, err = bookingDomain.NewServiceBooking(
			req.ProviderID,
			guestID,
			req.HostID,
			req.ScheduledStart,
			req.Duration,
			req.DeliveryMethod,
			req.PartySize,
			quote,
			req.SpecialRequests,
		)
		if err != nil {
			return err
		}

		return s.persistNewBooking(txCtx, bk, guestID)
	})
	if err != nil {
		return nil, err
	}

	s.publishRequested(ctx, bk)
	result := toBookingDTO(bk)
	return &result, nil
}

// persistNewBooking writes the booking row, its calendar hold, and the
// creation ledger entry, all inside the caller's transaction.
func (s *BookingService) persistNewBooking(txCtx context.Context, bk *bookingDomain.Booking, guestID uuid.UUID) error {
	if err := s.bookings.Save(txCtx, bk); err != nil {
		return err
	}

	// The calendar is blocked at creation, not at confirmation, so a second
	// guest cannot request overlapping dates while the first awaits
	// confirmation. The hold lapses after pendingHoldTTL if configured.
	bookingID := bk.ID()
	if _, err := s.availability.Block(
		txCtx,
		bk.ResourceID(),
		bk.Interval(),
		calendar.BlockKindBooking,
		"",
		guestID,
		&bookingID,
		s.holdExpiry(),
	); err != nil {
		return err
	}

	event := bookingDomain.NewStatusEvent(bk.ID(), nil, bookingDomain.StatusPending, "booking created", guestID, nil)
	return s.statusEvents.Append(txCtx, event)
}

func (s *BookingService) holdExpiry() *time.Time {
	if s.pendingHoldTTL <= 0 {
		return nil
	}
	t := s.clock.Now().Add(s.pendingHoldTTL)
	return &t
}

// UpdateStatus moves a booking to the requested status, applying the
// transition's side effect and appending exactly one ledger entry, all in one
// transaction.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status, reason string, actorID uuid.UUID) (*BookingDTO, error) {
	to, err := bookingDomain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *bookingDomain.Booking
	var from bookingDomain.Status
	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		bk, err := s.bookings.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		if err := s.txm.LockResource(txCtx, bk.ResourceID()); err != nil {
			return err
		}

		from = bk.Status()
		if err := bk.Transition(to, reason); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := s.bookings.Update(txCtx, bk); err != nil {
			return err
		}

		if effect, ok := s.sideEffects[to]; ok {
			if err := effect(txCtx, bk, from, actorID); err != nil {
				return err
			}
		}

		event := bookingDomain.NewStatusEvent(bk.ID(), &from, to, reason, actorID, nil)
		if err := s.statusEvents.Append(txCtx, event); err != nil {
			return err
		}

		updated = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, updated, from, to, reason, actorID)
	result := toBookingDTO(updated)
	return &result, nil
}

// --- Transition side effects ---

// ensureCalendarBlock guarantees a confirmed booking holds its calendar block.
// Creation already wrote the block, so normally this only promotes the hold to
// permanent; the block is re-created only if the pending hold lapsed.
func (s *BookingService) ensureCalendarBlock(txCtx context.Context, bk *bookingDomain.Booking, _ bookingDomain.Status, _ uuid.UUID) error {
	blocks, err := s.availability.BlocksForBooking(txCtx, bk.ID())
	if err != nil {
		return err
	}
	if len(blocks) > 0 {
		return s.availability.ConfirmHold(txCtx, bk.ID())
	}

	available, err := s.availability.IsAvailable(txCtx, bk.ResourceID(), bk.Interval())
	if err != nil {
		return err
	}
	if !available {
		return domain.NewDatesUnavailableError(bk.ResourceID().String())
	}
	bookingID := bk.ID()
	_, err = s.availability.Block(txCtx, bk.ResourceID(), bk.Interval(), calendar.BlockKindBooking, "", bk.HostID(), &bookingID, nil)
	return err
}

// releaseCalendarBlock frees the resource immediately on cancellation.
func (s *BookingService) releaseCalendarBlock(txCtx context.Context, bk *bookingDomain.Booking, _ bookingDomain.Status, _ uuid.UUID) error {
	return s.availability.Unblock(txCtx, bk.ID())
}

// openDispute records a dispute on behalf of the guest.
func (s *BookingService) openDispute(txCtx context.Context, bk *bookingDomain.Booking, from bookingDomain.Status, _ uuid.UUID) error {
	dispute := bookingDomain.NewDispute(bk.ID(), bk.GuestID(), from, bookingDomain.StatusDisputed)
	return s.disputes.Save(txCtx, dispute)
}

// --- Queries ---

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its reservation number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingHistory returns a booking's status ledger in change order.
func (s *BookingService) GetBookingHistory(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.StatusEvent, error) {
	if _, err := s.bookings.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.statusEvents.ListByBookingID(ctx, bookingID)
}

// GetGuestBookings retrieves paginated bookings for a guest.
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetHostBookings retrieves paginated bookings against a host's resources.
func (s *BookingService) GetHostBookings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// BookingStatsDTO holds booking counts for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns aggregate booking statistics.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Event publishing ---

func (s *BookingService) publishRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingRequestedEvent{
		BookingID:         bk.ID(),
		ReservationNumber: bk.ReservationNumber(),
		Kind:              string(bk.Kind()),
		ResourceID:        bk.ResourceID(),
		GuestID:           bk.GuestID(),
		HostID:            bk.HostID(),
		Start:             bk.Interval().Start,
		End:               bk.Interval().End,
		TotalCents:        bk.Price().Total,
		Currency:          bk.Price().Currency,
		OccurredAt:        s.clock.Now(),
	}
	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), evt)
}

var statusEventTypes = map[bookingDomain.Status]string{
	bookingDomain.StatusConfirmed: events.BookingConfirmed,
	bookingDomain.StatusActive:    events.BookingActivated,
	bookingDomain.StatusCompleted: events.BookingCompleted,
	bookingDomain.StatusCancelled: events.BookingCancelled,
	bookingDomain.StatusDisputed:  events.BookingDisputed,
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, from, to bookingDomain.Status, reason string, actorID uuid.UUID) {
	eventType, ok := statusEventTypes[to]
	if !ok {
		return
	}
	evt := events.BookingStatusChangedEvent{
		BookingID:         bk.ID(),
		ReservationNumber: bk.ReservationNumber(),
		FromStatus:        string(from),
		ToStatus:          string(to),
		Reason:            reason,
		ChangedBy:         actorID,
		OccurredAt:        s.clock.Now(),
	}
	s.publishEvent(ctx, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-reservation", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicReservationEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                bk.ID(),
		ReservationNumber: bk.ReservationNumber(),
		Kind:              string(bk.Kind()),
		ResourceID:        bk.ResourceID(),
		GuestID:           bk.GuestID(),
		HostID:            bk.HostID(),
		Status:            string(bk.Status()),
		Interval:          bk.Interval(),
		PartySize:         bk.PartySize(),
		Price:             bk.Price(),
		SpecialRequests:   bk.SpecialRequests(),
		ProviderID:        bk.ProviderID(),
		Duration:          bk.Duration(),
		DeliveryMethod:    bk.DeliveryMethod(),
		ConfirmedAt:       bk.ConfirmedAt(),
		CompletedAt:       bk.CompletedAt(),
		CancellationDate:  bk.CancellationDate(),
		CancelReason:      bk.CancelReason(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
