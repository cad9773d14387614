package models

import "github.com/rideapp/ride-booking-system/pkg/uuid"

// Lock key builders. The lifecycle service and the expiry sweeper must agree
// on these so a booking/ride is guarded by exactly one mutex. Booking keys
// sort before ride keys, which fixes the global acquisition order.

func BookingLockKey(id uuid.UUID) string {
	return "booking/" + id.String()
}

func RideLockKey(id uuid.UUID) string {
	return "ride/" + id.String()
}
