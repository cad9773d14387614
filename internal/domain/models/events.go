package models

import (
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Lifecycle event types, used as routing keys on the events exchange and as
// the "event" field of the admin WebSocket feed.
const (
	EventBookingRequested = "booking.requested"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
	EventRideConfirmed    = "ride.confirmed"
	EventRideExpired      = "ride.expired"
	EventCleanupCompleted = "cleanup.completed"
)

// BookingEvent describes one lifecycle transition.
type BookingEvent struct {
	Type       string              `json:"event"`
	BookingID  uuid.UUID           `json:"booking_id,omitempty"`
	RideID     uuid.UUID           `json:"ride_id,omitempty"`
	RiderID    uuid.UUID           `json:"rider_id,omitempty"`
	DriverID   *uuid.UUID          `json:"driver_id,omitempty"`
	Status     types.BookingStatus `json:"status,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// CleanupReport summarizes one expiry sweep.
type CleanupReport struct {
	DeletedBookings int       `json:"deleted_bookings"`
	DeletedRides    int       `json:"deleted_rides"`
	SkippedRecords  int       `json:"skipped_records"`
	RanAt           time.Time `json:"ran_at"`
}
