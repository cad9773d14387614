package models

import (
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Booking is a rider's request against a ride. Pickup/drop/time/fare/distance
// may override the parent ride's defaults. RideID, RiderID and CreatedAt are
// immutable after creation.
type Booking struct {
	ID      uuid.UUID
	RideID  uuid.UUID
	RiderID uuid.UUID

	Pickup string
	Drop   string

	// ScheduledTimeText is the raw scheduled-time string as entered by the
	// rider. It is parsed lazily by the expiry sweeper.
	ScheduledTimeText string

	DistanceMiles float64
	Fare          float64

	Status    types.BookingStatus
	CreatedAt time.Time
}

// Clone returns a copy so callers can mutate freely outside store locks.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}

// BookingPatch carries the updatable booking fields; nil means "leave as is".
type BookingPatch struct {
	Pickup            *string
	Drop              *string
	ScheduledTimeText *string
	Fare              *float64
}
