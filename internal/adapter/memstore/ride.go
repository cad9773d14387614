// Package memstore provides the in-memory authoritative stores. Records are
// cloned on the way in and out so callers can only mutate state through Save.
package memstore

import (
	"context"
	"sync"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type RideStore struct {
	mu    sync.RWMutex
	rides map[uuid.UUID]*models.Ride
}

func NewRideStore() *RideStore {
	return &RideStore{rides: make(map[uuid.UUID]*models.Ride)}
}

func (s *RideStore) Find(_ context.Context, id uuid.UUID) (*models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ride, ok := s.rides[id]
	if !ok {
		return nil, types.ErrRideNotFound
	}
	return ride.Clone(), nil
}

func (s *RideStore) Save(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rides[ride.ID] = ride.Clone()
	return nil
}

func (s *RideStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rides[id]; !ok {
		return types.ErrRideNotFound
	}
	delete(s.rides, id)
	return nil
}

func (s *RideStore) List(_ context.Context) ([]*models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Ride, 0, len(s.rides))
	for _, r := range s.rides {
		out = append(out, r.Clone())
	}
	return out, nil
}
