package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
	"github.com/lodgical/service-reservation/internal/platform/kafka"
)

// fakeTxManager serializes all transactions behind one mutex, mirroring the
// per-resource advisory lock the Postgres implementation takes.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *fakeTxManager) LockResource(ctx context.Context, resourceID uuid.UUID) error {
	return nil
}

// fakeBlockRepo is an in-memory calendar.BlockRepository. Save enforces the
// same no-overlap rule as the database exclusion constraint, including against
// expired holds, so callers must reap before inserting just like in Postgres.
type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks map[uuid.UUID]*calendar.Block
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[uuid.UUID]*calendar.Block)}
}

func (r *fakeBlockRepo) FindOverlapping(_ context.Context, resourceID uuid.UUID, interval calendar.Interval, now time.Time) ([]*calendar.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendar.Block
	for _, b := range r.blocks {
		if b.ResourceID == resourceID && b.Interval.Overlaps(interval) && !b.Expired(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBlockRepo) FindByResource(_ context.Context, resourceID uuid.UUID, interval calendar.Interval) ([]*calendar.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendar.Block
	for _, b := range r.blocks {
		if b.ResourceID == resourceID && b.Interval.Overlaps(interval) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBlockRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*calendar.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*calendar.Block
	for _, b := range r.blocks {
		if b.BookingID != nil && *b.BookingID == bookingID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBlockRepo) Save(_ context.Context, block *calendar.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.ResourceID == block.ResourceID && b.Interval.Overlaps(block.Interval) {
			return domain.NewStorageConflictError("calendar block overlaps an existing block")
		}
	}
	cp := *block
	r.blocks[block.ID] = &cp
	return nil
}

func (r *fakeBlockRepo) ClearHoldExpiry(_ context.Context, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.BookingID != nil && *b.BookingID == bookingID {
			b.HoldExpiresAt = nil
		}
	}
	return nil
}

func (r *fakeBlockRepo) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.blocks {
		if b.BookingID != nil && *b.BookingID == bookingID {
			delete(r.blocks, id)
		}
	}
	return nil
}

func (r *fakeBlockRepo) DeleteByRange(_ context.Context, resourceID uuid.UUID, interval calendar.Interval, kind calendar.BlockKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.blocks {
		if b.ResourceID == resourceID && b.Kind == kind && b.Interval.Start.Equal(interval.Start) && b.Interval.End.Equal(interval.End) {
			delete(r.blocks, id)
		}
	}
	return nil
}

func (r *fakeBlockRepo) DeleteExpiredHolds(_ context.Context, resourceID uuid.UUID, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.blocks {
		if b.ResourceID == resourceID && b.HoldExpiresAt != nil && b.HoldExpiresAt.Before(cutoff) {
			delete(r.blocks, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeBlockRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocks)
}

// fakeBookingRepo is an in-memory booking.Repository with optimistic locking.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.ReservationNumber() == number {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", number)
}

func (r *fakeBookingRepo) FindByGuestID(_ context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.GuestID() == guestID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByHostID(_ context.Context, hostID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.HostID() == hostID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	if existing != bk && existing.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = bk
	return nil
}

// fakeStatusEventRepo is an in-memory append-only ledger.
type fakeStatusEventRepo struct {
	mu     sync.Mutex
	events []*bookingDomain.StatusEvent
}

func (r *fakeStatusEventRepo) Append(_ context.Context, event *bookingDomain.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeStatusEventRepo) ListByBookingID(_ context.Context, bookingID uuid.UUID) ([]*bookingDomain.StatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.StatusEvent
	for _, e := range r.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeDisputeRepo is an in-memory booking.DisputeRepository.
type fakeDisputeRepo struct {
	mu       sync.Mutex
	disputes []*bookingDomain.Dispute
}

func (r *fakeDisputeRepo) Save(_ context.Context, d *bookingDomain.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disputes = append(r.disputes, d)
	return nil
}

func (r *fakeDisputeRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*bookingDomain.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Dispute
	for _, d := range r.disputes {
		if d.BookingID == bookingID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}
