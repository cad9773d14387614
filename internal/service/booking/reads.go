package booking

import (
	"context"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// GetRide returns one ride by id.
func (s *Service) GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := s.rides.Find(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(wrap.WithRideID(ctx, rideID.String()), err)
	}
	return ride, nil
}

// ListRides returns every ride currently stored.
func (s *Service) ListRides(ctx context.Context) ([]*models.Ride, error) {
	rides, err := s.rides.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return rides, nil
}

// AvailableRides returns Pending rides, the ones a rider may still book.
func (s *Service) AvailableRides(ctx context.Context) ([]*models.Ride, error) {
	rides, err := s.rides.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	available := make([]*models.Ride, 0, len(rides))
	for _, r := range rides {
		if r.Status == types.RidePending {
			available = append(available, r)
		}
	}
	return available, nil
}

// GetBooking returns one booking by id.
func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	b, err := s.bookings.Find(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(wrap.WithBookingID(ctx, bookingID.String()), err)
	}
	return b, nil
}

// ListBookings returns every booking currently stored.
func (s *Service) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return bookings, nil
}

// PendingBookings returns Requested bookings awaiting a driver decision.
func (s *Service) PendingBookings(ctx context.Context) ([]*models.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	pending := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == types.BookingRequested {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

// BookingsByRide returns the bookings attached to one ride.
func (s *Service) BookingsByRide(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error) {
	bookings, err := s.bookings.ListByRide(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(wrap.WithRideID(ctx, rideID.String()), err)
	}
	return bookings, nil
}

// BookingsByRider returns the bookings made by one rider.
func (s *Service) BookingsByRider(ctx context.Context, riderID uuid.UUID) ([]*models.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, wrap.Error(wrap.WithUserID(ctx, riderID.String()), err)
	}

	mine := make([]*models.Booking, 0)
	for _, b := range bookings {
		if b.RiderID == riderID {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

// AcceptedBookingsByDriver returns the accepted bookings on rides assigned
// to the given driver.
func (s *Service) AcceptedBookingsByDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Booking, error) {
	ctx = wrap.WithUserID(ctx, driverID.String())

	rides, err := s.rides.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	var accepted []*models.Booking
	for _, r := range rides {
		if r.DriverID == nil || *r.DriverID != driverID {
			continue
		}
		bookings, err := s.bookings.ListByRide(ctx, r.ID)
		if err != nil {
			return nil, wrap.Error(wrap.WithRideID(ctx, r.ID.String()), err)
		}
		for _, b := range bookings {
			if b.Status == types.BookingAccepted {
				accepted = append(accepted, b)
			}
		}
	}
	return accepted, nil
}
