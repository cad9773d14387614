package types

import "errors"

var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrSelfBookingBlocked is returned when the rider and the (candidate)
	// driver resolve to the same person, by id or by phone number.
	ErrSelfBookingBlocked = errors.New("self-booking blocked: rider and driver are the same person")

	// ErrBookingAlreadyAccepted is returned to the loser of an acceptance race.
	ErrBookingAlreadyAccepted = errors.New("booking has already been accepted by another driver")

	// ErrRoleNotEligible is returned when an admin identity attempts to act as a driver.
	ErrRoleNotEligible = errors.New("admin users cannot act as drivers")

	// ErrInvalidTransition is returned when a mutation is attempted outside
	// the permitted booking status.
	ErrInvalidTransition = errors.New("booking is no longer in a state that permits this operation")
)
