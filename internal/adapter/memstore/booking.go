package memstore

import (
	"context"
	"sync"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type BookingStore struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*models.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (s *BookingStore) Find(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	return b.Clone(), nil
}

func (s *BookingStore) Save(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings[b.ID] = b.Clone()
	return nil
}

func (s *BookingStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return types.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *BookingStore) List(_ context.Context) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (s *BookingStore) ListByRide(_ context.Context, rideID uuid.UUID) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Booking, 0)
	for _, b := range s.bookings {
		if b.RideID == rideID {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}
