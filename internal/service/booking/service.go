package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/clock"
	"github.com/rideapp/ride-booking-system/pkg/keylock"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/metrics"
	"github.com/rideapp/ride-booking-system/pkg/trm"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Service is the booking/ride lifecycle engine. All mutations of the ride
// and booking stores go through here under per-record locks; the expiry
// sweeper shares the same lock registry.
type Service struct {
	rides    RideStore
	bookings BookingStore
	users    UserDirectory
	events   EventPublisher
	locks    *keylock.KeyedMutex
	clock    clock.Clock

	sameActor CollisionFunc
	txm       trm.TxManager
	log       logger.Logger
}

type Option func(*Service)

// WithCollisionFunc swaps the self-booking identity predicate.
func WithCollisionFunc(fn CollisionFunc) Option {
	return func(s *Service) {
		s.sameActor = fn
	}
}

// WithTxManager wraps multi-record mutations in a database transaction.
// Without it each Save stands alone, which is what the in-memory stores need.
func WithTxManager(txm trm.TxManager) Option {
	return func(s *Service) {
		s.txm = txm
	}
}

func NewService(
	rides RideStore,
	bookings BookingStore,
	users UserDirectory,
	events EventPublisher,
	locks *keylock.KeyedMutex,
	clk clock.Clock,
	log logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		rides:     rides,
		bookings:  bookings,
		users:     users,
		events:    events,
		locks:     locks,
		clock:     clk,
		sameActor: SameIdentity,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RideInput carries the fields of a new ride offer.
type RideInput struct {
	Pickup               string
	Drop                 string
	ScheduledAt          time.Time
	Price                float64
	DistanceMiles        float64
	EstimatedDurationMin int
}

// BookingRequest carries the rider's overrides for a new booking.
// Nil/empty fields fall back to the parent ride's defaults.
type BookingRequest struct {
	Pickup            string
	Drop              string
	ScheduledTimeText string
	Fare              *float64
	DistanceMiles     *float64
}

// CreateRide creates a Pending ride posted by a driver.
func (s *Service) CreateRide(ctx context.Context, driverID uuid.UUID, in RideInput) (*models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionCreateRide)
	ctx = wrap.WithUserID(ctx, driverID.String())

	driver, err := s.users.Find(ctx, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not resolve driver: %w", err))
	}

	ride, err := s.newRide(ctx, in)
	if err != nil {
		return nil, err
	}
	ride.DriverID = &driver.ID

	if err := s.rides.Save(ctx, ride); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not save ride: %w", err))
	}

	metrics.RidesCreatedTotal.WithLabelValues("driver").Inc()
	s.log.Info(wrap.WithRideID(ctx, ride.ID.String()), "ride created", "driver_id", driver.ID)

	return ride, nil
}

// CreateRideRequest creates a Pending, driverless ride posted by a passenger.
// A driver is assigned when one of its bookings is accepted.
func (s *Service) CreateRideRequest(ctx context.Context, in RideInput) (*models.Ride, error) {
	ctx = wrap.WithAction(ctx, types.ActionCreateRide)

	ride, err := s.newRide(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.rides.Save(ctx, ride); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not save ride: %w", err))
	}

	metrics.RidesCreatedTotal.WithLabelValues("passenger").Inc()
	s.log.Info(wrap.WithRideID(ctx, ride.ID.String()), "ride request created")

	return ride, nil
}

func (s *Service) newRide(ctx context.Context, in RideInput) (*models.Ride, error) {
	id, err := uuid.New()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate ride id: %w", err))
	}

	return &models.Ride{
		ID:                   id,
		Pickup:               in.Pickup,
		Drop:                 in.Drop,
		ScheduledAt:          in.ScheduledAt,
		Price:                in.Price,
		DistanceMiles:        in.DistanceMiles,
		EstimatedDurationMin: in.EstimatedDurationMin,
		Status:               types.RidePending,
		CreatedAt:            s.clock.Now(),
	}, nil
}

// CreateBooking creates a Requested booking against an existing ride.
// If the ride currently has a driver, the self-booking rule applies.
func (s *Service) CreateBooking(ctx context.Context, rideID, riderID uuid.UUID, req BookingRequest) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, types.ActionCreateBooking)
	ctx = wrap.WithRideID(ctx, rideID.String())
	ctx = wrap.WithUserID(ctx, riderID.String())

	// Holding the ride lock until the booking is saved keeps the sweeper from
	// reclaiming the ride in between, which would leave the booking orphaned.
	unlock := s.locks.Lock(models.RideLockKey(rideID))
	defer unlock()

	ride, err := s.rides.Find(ctx, rideID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	rider, err := s.users.Find(ctx, riderID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not resolve rider: %w", err))
	}

	if ride.DriverID != nil {
		driver, err := s.users.Find(ctx, *ride.DriverID)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("could not resolve ride driver: %w", err))
		}
		if s.sameActor(rider, driver) {
			return nil, wrap.Error(ctx, types.ErrSelfBookingBlocked)
		}
	}

	id, err := uuid.New()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not generate booking id: %w", err))
	}

	b := &models.Booking{
		ID:                id,
		RideID:            ride.ID,
		RiderID:           rider.ID,
		Pickup:            req.Pickup,
		Drop:              req.Drop,
		ScheduledTimeText: req.ScheduledTimeText,
		Status:            types.BookingRequested,
		CreatedAt:         s.clock.Now(),
	}

	// Ride defaults for anything the rider left unset.
	if b.Pickup == "" {
		b.Pickup = ride.Pickup
	}
	if b.Drop == "" {
		b.Drop = ride.Drop
	}
	if b.ScheduledTimeText == "" && !ride.ScheduledAt.IsZero() {
		b.ScheduledTimeText = ride.ScheduledAt.Format("15:04")
	}
	if req.Fare != nil {
		b.Fare = *req.Fare
	} else {
		b.Fare = ride.Price
	}
	if req.DistanceMiles != nil {
		b.DistanceMiles = *req.DistanceMiles
	} else {
		b.DistanceMiles = ride.DistanceMiles
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not save booking: %w", err))
	}

	metrics.BookingsCreatedTotal.Inc()
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingRequested,
		BookingID:  b.ID,
		RideID:     b.RideID,
		RiderID:    b.RiderID,
		Status:     b.Status,
		OccurredAt: s.clock.Now(),
	})
	s.log.Info(wrap.WithBookingID(ctx, b.ID.String()), "booking created")

	return b, nil
}

// AcceptBooking is the compare-and-set acceptance of a booking by a driver
// candidate. Exactly one of any number of concurrent accepts on the same
// booking succeeds; the rest observe ErrBookingAlreadyAccepted. This is the
// only path that ever sets a ride to Confirmed.
func (s *Service) AcceptBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, types.ActionAcceptBooking)
	ctx = wrap.WithBookingID(ctx, bookingID.String())
	ctx = wrap.WithUserID(ctx, driverID.String())

	driver, err := s.users.Find(ctx, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not resolve driver candidate: %w", err))
	}
	if driver.Role == types.RoleAdmin {
		return nil, wrap.Error(ctx, types.ErrRoleNotEligible)
	}

	// Booking lock first, ride lock second; the sweeper uses the same order.
	unlockBooking := s.locks.Lock(models.BookingLockKey(bookingID))
	defer unlockBooking()

	b, err := s.bookings.Find(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	rider, err := s.users.Find(ctx, b.RiderID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not resolve booking rider: %w", err))
	}
	if s.sameActor(rider, driver) {
		return nil, wrap.Error(ctx, types.ErrSelfBookingBlocked)
	}

	switch b.Status {
	case types.BookingAccepted:
		metrics.RecordAccept("conflict")
		return nil, wrap.Error(ctx, types.ErrBookingAlreadyAccepted)
	case types.BookingRequested:
		// proceed
	default:
		return nil, wrap.Error(ctx, types.ErrInvalidTransition)
	}

	unlockRide := s.locks.Lock(models.RideLockKey(b.RideID))
	defer unlockRide()

	ride, err := s.rides.Find(ctx, b.RideID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	prev := ride.Clone()
	ride.DriverID = &driver.ID
	ride.Status = types.RideConfirmed
	b.Status = types.BookingAccepted

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.rides.Save(ctx, ride); err != nil {
			return fmt.Errorf("could not confirm ride: %w", err)
		}
		if err := s.bookings.Save(ctx, b); err != nil {
			return fmt.Errorf("could not accept booking: %w", err)
		}
		return nil
	})
	if err != nil {
		// Restore the ride so the loser of a later race never observes a
		// Confirmed ride without an Accepted booking.
		if rbErr := s.rides.Save(ctx, prev); rbErr != nil {
			s.log.Error(ctx, "failed to restore ride after accept failure", rbErr)
		}
		metrics.RecordAccept("error")
		return nil, wrap.Error(ctx, err)
	}

	metrics.RecordAccept("won")
	now := s.clock.Now()
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingAccepted,
		BookingID:  b.ID,
		RideID:     ride.ID,
		RiderID:    b.RiderID,
		DriverID:   ride.DriverID,
		Status:     b.Status,
		OccurredAt: now,
	})
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventRideConfirmed,
		BookingID:  b.ID,
		RideID:     ride.ID,
		RiderID:    b.RiderID,
		DriverID:   ride.DriverID,
		OccurredAt: now,
	})
	s.log.Info(wrap.WithRideID(ctx, ride.ID.String()), "booking accepted", "driver_id", driver.ID)

	return b, nil
}

// RejectBooking marks a Requested booking Rejected. The ride is untouched.
func (s *Service) RejectBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, types.ActionRejectBooking)
	ctx = wrap.WithBookingID(ctx, bookingID.String())
	ctx = wrap.WithUserID(ctx, driverID.String())

	driver, err := s.users.Find(ctx, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not resolve driver candidate: %w", err))
	}
	if driver.Role == types.RoleAdmin {
		return nil, wrap.Error(ctx, types.ErrRoleNotEligible)
	}

	unlock := s.locks.Lock(models.BookingLockKey(bookingID))
	defer unlock()

	b, err := s.bookings.Find(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if b.Status != types.BookingRequested {
		return nil, wrap.Error(ctx, types.ErrInvalidTransition)
	}

	b.Status = types.BookingRejected
	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not reject booking: %w", err))
	}

	metrics.BookingsRejectedTotal.Inc()
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingRejected,
		BookingID:  b.ID,
		RideID:     b.RideID,
		RiderID:    b.RiderID,
		Status:     b.Status,
		OccurredAt: s.clock.Now(),
	})
	s.log.Info(ctx, "booking rejected", "driver_id", driver.ID)

	return b, nil
}

// UpdateBooking applies the patch to a booking that is still Requested.
// When either location changes the distance estimate is recomputed.
func (s *Service) UpdateBooking(ctx context.Context, bookingID uuid.UUID, patch models.BookingPatch) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, types.ActionUpdateBooking)
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	unlock := s.locks.Lock(models.BookingLockKey(bookingID))
	defer unlock()

	b, err := s.bookings.Find(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if b.Status != types.BookingRequested {
		return nil, wrap.Error(ctx, types.ErrInvalidTransition)
	}

	locationChanged := false
	if patch.Pickup != nil {
		b.Pickup = *patch.Pickup
		locationChanged = true
	}
	if patch.Drop != nil {
		b.Drop = *patch.Drop
		locationChanged = true
	}
	if patch.ScheduledTimeText != nil {
		b.ScheduledTimeText = *patch.ScheduledTimeText
	}
	if patch.Fare != nil {
		b.Fare = *patch.Fare
	}
	if locationChanged {
		b.DistanceMiles = estimateDistanceMiles(b.Pickup, b.Drop)
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("could not update booking: %w", err))
	}

	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingUpdated,
		BookingID:  b.ID,
		RideID:     b.RideID,
		RiderID:    b.RiderID,
		Status:     b.Status,
		OccurredAt: s.clock.Now(),
	})
	s.log.Info(ctx, "booking updated")

	return b, nil
}

// CancelBooking deletes a booking that is still Requested.
func (s *Service) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	ctx = wrap.WithAction(ctx, types.ActionCancelBooking)
	ctx = wrap.WithBookingID(ctx, bookingID.String())

	unlock := s.locks.Lock(models.BookingLockKey(bookingID))
	defer unlock()

	b, err := s.bookings.Find(ctx, bookingID)
	if err != nil {
		return wrap.Error(ctx, err)
	}

	if b.Status != types.BookingRequested {
		return wrap.Error(ctx, types.ErrInvalidTransition)
	}

	if err := s.bookings.Delete(ctx, b.ID); err != nil {
		return wrap.Error(ctx, fmt.Errorf("could not delete booking: %w", err))
	}

	metrics.BookingsCancelledTotal.Inc()
	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingCancelled,
		BookingID:  b.ID,
		RideID:     b.RideID,
		RiderID:    b.RiderID,
		OccurredAt: s.clock.Now(),
	})
	s.log.Info(ctx, "booking cancelled")

	return nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txm == nil {
		return fn(ctx)
	}
	return s.txm.Do(ctx, fn)
}

func (s *Service) publish(ctx context.Context, ev models.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingEvent(ctx, ev); err != nil {
		s.log.Warn(wrap.WithAction(ctx, types.ActionEventPublish),
			"failed to publish lifecycle event", "event", ev.Type, "err", err.Error())
	}
}
