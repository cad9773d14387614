package types

// RideStatus is the lifecycle state of a ride offer.
type RideStatus string

const (
	RidePending   RideStatus = "PENDING"
	RideConfirmed RideStatus = "CONFIRMED"
	RideCompleted RideStatus = "COMPLETED"
	RideCancelled RideStatus = "CANCELLED"
)

func (s RideStatus) String() string {
	return string(s)
}

// Terminal reports whether the status can never change again.
// Completed and Cancelled rides are set outside the lifecycle engine and
// must be left alone by the sweeper.
func (s RideStatus) Terminal() bool {
	return s == RideCompleted || s == RideCancelled
}

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	BookingRequested BookingStatus = "REQUESTED"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingRejected  BookingStatus = "REJECTED"
)

func (s BookingStatus) String() string {
	return string(s)
}

// UserRole of a directory user.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleDriver UserRole = "DRIVER"
	RoleRider  UserRole = "RIDER"
)

func (r UserRole) String() string {
	return string(r)
}

// UserStatus of a directory user.
type UserStatus string

const (
	UserActive  UserStatus = "ACTIVE"
	UserBlocked UserStatus = "BLOCKED"
)
