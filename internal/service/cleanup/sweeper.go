package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/clock"
	"github.com/rideapp/ride-booking-system/pkg/keylock"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/metrics"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Sweeper periodically deletes expired bookings and the rides they leave
// behind. It shares the per-record lock registry with the lifecycle service,
// so a sweep never observes a booking mid-transition.
type Sweeper struct {
	rides    RideStore
	bookings BookingStore
	events   EventPublisher
	locks    *keylock.KeyedMutex
	clock    clock.Clock

	policy   Policy
	interval time.Duration
	log      logger.Logger
}

func NewSweeper(
	rides RideStore,
	bookings BookingStore,
	events EventPublisher,
	locks *keylock.KeyedMutex,
	clk clock.Clock,
	policy Policy,
	interval time.Duration,
	log logger.Logger,
) *Sweeper {
	return &Sweeper{
		rides:    rides,
		bookings: bookings,
		events:   events,
		locks:    locks,
		clock:    clk,
		policy:   policy,
		interval: interval,
		log:      log,
	}
}

// Start runs scheduled sweeps until ctx is cancelled. The first sweep fires
// after one full interval, not at startup.
func (s *Sweeper) Start(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionSweep)
	s.log.Info(ctx, "expiry sweeper started", "interval", s.interval.String())

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "expiry sweeper stopped")
			return
		case <-ticker.C():
			report := s.Run(ctx, TriggerScheduled)
			if report.DeletedBookings > 0 || report.DeletedRides > 0 || report.SkippedRecords > 0 {
				s.log.Info(ctx, "sweep completed",
					"deleted_bookings", report.DeletedBookings,
					"deleted_rides", report.DeletedRides,
					"skipped", report.SkippedRecords,
				)
			}
		}
	}
}

// Run executes one full sweep and returns its report. It is safe to call
// concurrently with lifecycle operations and with itself.
func (s *Sweeper) Run(ctx context.Context, trigger string) models.CleanupReport {
	started := s.clock.Now()
	report := models.CleanupReport{RanAt: started}

	stats := s.sweepBookings(ctx, &report)
	s.sweepRides(ctx, stats, &report)

	metrics.RecordSweep(trigger, s.clock.Now().Sub(started), report.DeletedBookings, report.DeletedRides)
	metrics.SweeperSkippedRecordsTotal.Add(float64(report.SkippedRecords))

	s.publish(ctx, models.BookingEvent{
		Type:       models.EventCleanupCompleted,
		OccurredAt: s.clock.Now(),
	})
	return report
}

// rideStats is what the booking pass learned about one ride's bookings.
type rideStats struct {
	observed int
	deleted  int
	accepted bool
}

func (s *Sweeper) sweepBookings(ctx context.Context, report *models.CleanupReport) map[uuid.UUID]*rideStats {
	stats := make(map[uuid.UUID]*rideStats)

	bookings, err := s.bookings.List(ctx)
	if err != nil {
		s.log.Error(ctx, "sweep could not list bookings", err)
		report.SkippedRecords++
		return stats
	}

	for _, b := range bookings {
		if err := s.sweepOneBooking(ctx, b.ID, stats, report); err != nil {
			report.SkippedRecords++
			s.log.Error(wrap.WithBookingID(ctx, b.ID.String()), "sweep skipped booking", err)
		}
	}
	return stats
}

// sweepOneBooking re-reads and evaluates a single booking under its lock.
// A panic in evaluation is contained to this record.
func (s *Sweeper) sweepOneBooking(ctx context.Context, id uuid.UUID, stats map[uuid.UUID]*rideStats, report *models.CleanupReport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	unlock := s.locks.Lock(models.BookingLockKey(id))
	defer unlock()

	b, err := s.bookings.Find(ctx, id)
	if err != nil {
		// Deleted since the listing; nothing to do.
		if errors.Is(err, types.ErrBookingNotFound) {
			return nil
		}
		return err
	}

	st := stats[b.RideID]
	if st == nil {
		st = &rideStats{}
		stats[b.RideID] = st
	}
	st.observed++
	if b.Status == types.BookingAccepted {
		st.accepted = true
	}

	if !s.policy.BookingExpired(b, s.clock.Now()) {
		return nil
	}

	if err := s.bookings.Delete(ctx, b.ID); err != nil {
		return fmt.Errorf("could not delete expired booking: %w", err)
	}
	st.deleted++
	report.DeletedBookings++

	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingExpired,
		BookingID:  b.ID,
		RideID:     b.RideID,
		RiderID:    b.RiderID,
		Status:     b.Status,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

// sweepRides deletes rides emptied by the booking pass. A ride qualifies only
// if the pass saw at least one booking for it, none were accepted, every one
// was expired and deleted, and a re-check under the ride lock finds none left.
func (s *Sweeper) sweepRides(ctx context.Context, stats map[uuid.UUID]*rideStats, report *models.CleanupReport) {
	for rideID, st := range stats {
		if st.observed == 0 || st.accepted || st.deleted != st.observed {
			continue
		}
		if err := s.sweepOneRide(ctx, rideID, report); err != nil {
			report.SkippedRecords++
			s.log.Error(wrap.WithRideID(ctx, rideID.String()), "sweep skipped ride", err)
		}
	}
}

func (s *Sweeper) sweepOneRide(ctx context.Context, rideID uuid.UUID, report *models.CleanupReport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	unlock := s.locks.Lock(models.RideLockKey(rideID))
	defer unlock()

	// A booking created after the pass keeps the ride alive.
	remaining, err := s.bookings.ListByRide(ctx, rideID)
	if err != nil {
		return fmt.Errorf("could not re-check ride bookings: %w", err)
	}
	if len(remaining) > 0 {
		return nil
	}

	ride, err := s.rides.Find(ctx, rideID)
	if err != nil {
		if errors.Is(err, types.ErrRideNotFound) {
			return nil
		}
		return err
	}
	// Completed and Cancelled rides are owned by whoever set the status.
	if ride.Status.Terminal() {
		return nil
	}

	if err := s.rides.Delete(ctx, rideID); err != nil {
		return fmt.Errorf("could not delete ride: %w", err)
	}
	report.DeletedRides++

	s.publish(ctx, models.BookingEvent{
		Type:       models.EventRideExpired,
		RideID:     rideID,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

func (s *Sweeper) publish(ctx context.Context, ev models.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingEvent(ctx, ev); err != nil {
		s.log.Warn(ctx, "failed to publish sweep event", "event", ev.Type, "err", err.Error())
	}
}
