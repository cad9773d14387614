package models

import (
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Ride is a transport offer between two free-text locations.
// DriverID is nil for passenger-requested rides until a booking is accepted.
type Ride struct {
	ID       uuid.UUID
	DriverID *uuid.UUID

	Pickup string
	Drop   string

	ScheduledAt          time.Time
	Price                float64
	DistanceMiles        float64
	EstimatedDurationMin int

	Status    types.RideStatus
	CreatedAt time.Time
}

// Clone returns a deep copy so callers can mutate freely outside store locks.
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	out := *r
	if r.DriverID != nil {
		id := *r.DriverID
		out.DriverID = &id
	}
	return &out
}
