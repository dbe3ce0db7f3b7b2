package booking_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"dynamictickets/booking"
	"dynamictickets/entities"
)

// memoryStore mimics the Postgres store: one mutex per event row and
// writes staged until the callback succeeds.
type memoryStore struct {
	mu        sync.Mutex
	rowLocks  map[int64]*sync.Mutex
	events    map[int64]entities.Event
	bookings  []entities.Booking
	published []entities.IEvent
	nextID    int64

	lockCalls         int
	transientFailures int
	failInsert        error
	failUpdate        error
	failPublish       error
}

func newMemoryStore(events ...entities.Event) *memoryStore {
	s := &memoryStore{
		rowLocks: map[int64]*sync.Mutex{},
		events:   map[int64]entities.Event{},
	}
	for _, e := range events {
		s.rowLocks[e.ID] = &sync.Mutex{}
		s.events[e.ID] = e
	}
	return s
}

func (s *memoryStore) WithEventLock(
	ctx context.Context,
	eventID int64,
	fn func(ctx context.Context, tx booking.InventoryTx, event entities.Event) error,
) error {
	s.mu.Lock()
	s.lockCalls++
	if s.transientFailures > 0 {
		s.transientFailures--
		s.mu.Unlock()
		return entities.TransientStoreError{Err: errors.New("canceling statement due to lock timeout")}
	}
	rowLock, ok := s.rowLocks[eventID]
	s.mu.Unlock()
	if !ok {
		return entities.ErrEventNotFound
	}

	rowLock.Lock()
	defer rowLock.Unlock()

	s.mu.Lock()
	event := s.events[eventID]
	s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(ctx, tx, event); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = append(s.bookings, tx.bookings...)
	s.published = append(s.published, tx.events...)
	if tx.update != nil {
		e := s.events[eventID]
		e.BookedTickets = tx.update.BookedTickets
		e.CurrentPrice = tx.update.CurrentPrice
		e.BookingSeq = tx.update.BookingSeq
		e.UpdatedAt = tx.update.UpdatedAt
		s.events[eventID] = e
	}

	return nil
}

func (s *memoryStore) event(id int64) entities.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *memoryStore) committedBookings() []entities.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Booking(nil), s.bookings...)
}

func (s *memoryStore) publishedEvents() []entities.IEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.IEvent(nil), s.published...)
}

type memoryTx struct {
	store    *memoryStore
	bookings []entities.Booking
	update   *entities.InventoryUpdate
	events   []entities.IEvent
}

func (tx *memoryTx) RecentBookings(ctx context.Context, eventID int64, since time.Time) ([]entities.RecentBooking, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	var recent []entities.RecentBooking
	for _, b := range tx.store.bookings {
		if b.EventID == eventID && !b.CreatedAt.Before(since) {
			recent = append(recent, entities.RecentBooking{EventID: b.EventID, CreatedAt: b.CreatedAt})
		}
	}
	return recent, nil
}

func (tx *memoryTx) InsertBooking(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	if tx.store.failInsert != nil {
		return entities.Booking{}, tx.store.failInsert
	}

	tx.store.mu.Lock()
	tx.store.nextID++
	b.ID = tx.store.nextID
	tx.store.mu.Unlock()

	tx.bookings = append(tx.bookings, b)
	return b, nil
}

func (tx *memoryTx) UpdateInventory(ctx context.Context, update entities.InventoryUpdate) error {
	if tx.store.failUpdate != nil {
		return tx.store.failUpdate
	}
	tx.update = &update
	return nil
}

func (tx *memoryTx) Publish(ctx context.Context, events ...entities.IEvent) error {
	if tx.store.failPublish != nil {
		return tx.store.failPublish
	}
	tx.events = append(tx.events, events...)
	return nil
}
