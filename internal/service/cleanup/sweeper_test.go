package cleanup_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rideapp/ride-booking-system/internal/adapter/memstore"
	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/internal/service/cleanup"
	"github.com/rideapp/ride-booking-system/pkg/clock"
	"github.com/rideapp/ride-booking-system/pkg/keylock"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type sweepFixture struct {
	sweeper  *cleanup.Sweeper
	rides    *memstore.RideStore
	bookings *memstore.BookingStore
	clk      *clock.Fake
}

func newSweepFixture(t *testing.T, start time.Time) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		rides:    memstore.NewRideStore(),
		bookings: memstore.NewBookingStore(),
		clk:      clock.NewFake(start),
	}
	f.sweeper = cleanup.NewSweeper(
		f.rides, f.bookings, nil, keylock.New(), f.clk,
		cleanup.Policy{Grace: 20 * time.Minute, AcceptedRetention: 48 * time.Hour},
		10*time.Minute,
		logger.Discard(),
	)
	return f
}

func (f *sweepFixture) addRide(t *testing.T) *models.Ride {
	t.Helper()
	ride := &models.Ride{ID: uuid.MustNew(), Status: types.RidePending, CreatedAt: f.clk.Now()}
	if err := f.rides.Save(context.Background(), ride); err != nil {
		t.Fatalf("save ride: %v", err)
	}
	return ride
}

func (f *sweepFixture) addBooking(t *testing.T, rideID uuid.UUID, status types.BookingStatus, timeText string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID:                uuid.MustNew(),
		RideID:            rideID,
		RiderID:           uuid.MustNew(),
		ScheduledTimeText: timeText,
		Status:            status,
		CreatedAt:         f.clk.Now(),
	}
	if err := f.bookings.Save(context.Background(), b); err != nil {
		t.Fatalf("save booking: %v", err)
	}
	return b
}

func (f *sweepFixture) bookingExists(t *testing.T, id uuid.UUID) bool {
	t.Helper()
	_, err := f.bookings.Find(context.Background(), id)
	if err == nil {
		return true
	}
	if errors.Is(err, types.ErrBookingNotFound) {
		return false
	}
	t.Fatalf("find booking: %v", err)
	return false
}

func (f *sweepFixture) rideExists(t *testing.T, id uuid.UUID) bool {
	t.Helper()
	_, err := f.rides.Find(context.Background(), id)
	if err == nil {
		return true
	}
	if errors.Is(err, types.ErrRideNotFound) {
		return false
	}
	t.Fatalf("find ride: %v", err)
	return false
}

// At 10:19 a 10:00 booking is still inside the 20 minute grace window;
// at 10:21 it is past it.
func TestSweep_GraceWindowBoundary(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)

	t.Run("inside grace", func(t *testing.T) {
		f := newSweepFixture(t, day.Add(10*time.Hour+19*time.Minute))
		ride := f.addRide(t)
		b := f.addBooking(t, ride.ID, types.BookingRequested, "10:00")

		report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

		if report.DeletedBookings != 0 {
			t.Fatalf("deleted = %d, want 0", report.DeletedBookings)
		}
		if !f.bookingExists(t, b.ID) {
			t.Fatalf("booking deleted inside the grace window")
		}
	})

	t.Run("past grace", func(t *testing.T) {
		f := newSweepFixture(t, day.Add(10*time.Hour+21*time.Minute))
		ride := f.addRide(t)
		b := f.addBooking(t, ride.ID, types.BookingRequested, "10:00")

		report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

		if report.DeletedBookings != 1 {
			t.Fatalf("deleted = %d, want 1", report.DeletedBookings)
		}
		if f.bookingExists(t, b.ID) {
			t.Fatalf("booking survived past the grace window")
		}
	})
}

// A time-of-day text anchors to the sweep's own day, so a booking scheduled
// for later today never expires early.
func TestSweep_FutureTimeOfDayKept(t *testing.T) {
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day)
	ride := f.addRide(t)
	b := f.addBooking(t, ride.ID, types.BookingRequested, "18:30")

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedBookings != 0 {
		t.Fatalf("deleted = %d, want 0", report.DeletedBookings)
	}
	if !f.bookingExists(t, b.ID) {
		t.Fatalf("future booking deleted")
	}
}

// Accepted bookings ignore their scheduled time entirely; only age counts.
func TestSweep_AcceptedRetention(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("47h kept", func(t *testing.T) {
		f := newSweepFixture(t, start)
		ride := f.addRide(t)
		b := f.addBooking(t, ride.ID, types.BookingAccepted, "10:00")
		f.clk.Advance(47 * time.Hour)

		f.sweeper.Run(context.Background(), cleanup.TriggerManual)

		if !f.bookingExists(t, b.ID) {
			t.Fatalf("accepted booking deleted before retention elapsed")
		}
	})

	t.Run("49h swept", func(t *testing.T) {
		f := newSweepFixture(t, start)
		ride := f.addRide(t)
		b := f.addBooking(t, ride.ID, types.BookingAccepted, "10:00")
		f.clk.Advance(49 * time.Hour)

		report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

		if report.DeletedBookings != 1 {
			t.Fatalf("deleted = %d, want 1", report.DeletedBookings)
		}
		if f.bookingExists(t, b.ID) {
			t.Fatalf("accepted booking survived past retention")
		}
	})
}

// Unparseable time text never expires, no matter how old the booking gets.
func TestSweep_UnparseableNeverExpires(t *testing.T) {
	f := newSweepFixture(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ride := f.addRide(t)
	b := f.addBooking(t, ride.ID, types.BookingRequested, "not-a-time")
	empty := f.addBooking(t, ride.ID, types.BookingRequested, "")
	f.clk.Advance(30 * 24 * time.Hour)

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedBookings != 0 {
		t.Fatalf("deleted = %d, want 0", report.DeletedBookings)
	}
	if !f.bookingExists(t, b.ID) || !f.bookingExists(t, empty.ID) {
		t.Fatalf("booking with unreadable schedule was deleted")
	}
}

// A datetime text expires off its absolute instant plus grace.
func TestSweep_DateTimeText(t *testing.T) {
	f := newSweepFixture(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local))
	ride := f.addRide(t)
	old := f.addBooking(t, ride.ID, types.BookingRequested, "2025-06-01 20:00")
	future := f.addBooking(t, ride.ID, types.BookingRequested, "2025-06-03 08:00")

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedBookings != 1 {
		t.Fatalf("deleted = %d, want 1", report.DeletedBookings)
	}
	if f.bookingExists(t, old.ID) {
		t.Fatalf("stale datetime booking survived")
	}
	if !f.bookingExists(t, future.ID) {
		t.Fatalf("future datetime booking deleted")
	}
}

// A ride whose bookings all expired goes in the same sweep as its bookings.
func TestSweep_RideDeletedWithItsBookings(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day.Add(12*time.Hour))
	ride := f.addRide(t)
	a := f.addBooking(t, ride.ID, types.BookingRequested, "08:00")
	b := f.addBooking(t, ride.ID, types.BookingRequested, "09:15")

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedBookings != 2 {
		t.Fatalf("deleted bookings = %d, want 2", report.DeletedBookings)
	}
	if report.DeletedRides != 1 {
		t.Fatalf("deleted rides = %d, want 1", report.DeletedRides)
	}
	if f.bookingExists(t, a.ID) || f.bookingExists(t, b.ID) || f.rideExists(t, ride.ID) {
		t.Fatalf("expired records survived the sweep")
	}
}

// Completed and Cancelled rides belong to whoever closed them out; the sweep
// may expire their bookings but leaves the rides in place.
func TestSweep_TerminalRideKept(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)

	for _, status := range []types.RideStatus{types.RideCancelled, types.RideCompleted} {
		t.Run(status.String(), func(t *testing.T) {
			f := newSweepFixture(t, day.Add(12*time.Hour))
			ride := &models.Ride{ID: uuid.MustNew(), Status: status, CreatedAt: f.clk.Now()}
			if err := f.rides.Save(context.Background(), ride); err != nil {
				t.Fatalf("save ride: %v", err)
			}
			b := f.addBooking(t, ride.ID, types.BookingRequested, "08:00")

			report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

			if f.bookingExists(t, b.ID) {
				t.Fatalf("expired booking survived")
			}
			if !f.rideExists(t, ride.ID) {
				t.Fatalf("%s ride was deleted by the sweep", status)
			}
			if report.DeletedRides != 0 {
				t.Fatalf("deleted rides = %d, want 0", report.DeletedRides)
			}
		})
	}
}

// A ride with no bookings at all is never swept.
func TestSweep_BookinglessRideKept(t *testing.T) {
	f := newSweepFixture(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ride := f.addRide(t)
	f.clk.Advance(30 * 24 * time.Hour)

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedRides != 0 {
		t.Fatalf("deleted rides = %d, want 0", report.DeletedRides)
	}
	if !f.rideExists(t, ride.ID) {
		t.Fatalf("bookingless ride was swept")
	}
}

// An accepted booking on the ride keeps the ride alive even when sibling
// bookings expire.
func TestSweep_AcceptedBookingProtectsRide(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day.Add(12*time.Hour))
	ride := f.addRide(t)
	f.addBooking(t, ride.ID, types.BookingRequested, "08:00")
	kept := f.addBooking(t, ride.ID, types.BookingAccepted, "08:00")

	report := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if report.DeletedBookings != 1 {
		t.Fatalf("deleted bookings = %d, want 1", report.DeletedBookings)
	}
	if report.DeletedRides != 0 {
		t.Fatalf("deleted rides = %d, want 0", report.DeletedRides)
	}
	if !f.bookingExists(t, kept.ID) || !f.rideExists(t, ride.ID) {
		t.Fatalf("accepted booking or its ride was swept")
	}
}

// Running the sweep twice deletes nothing new the second time.
func TestSweep_Idempotent(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day.Add(12*time.Hour))
	ride := f.addRide(t)
	f.addBooking(t, ride.ID, types.BookingRequested, "08:00")

	first := f.sweeper.Run(context.Background(), cleanup.TriggerManual)
	second := f.sweeper.Run(context.Background(), cleanup.TriggerManual)

	if first.DeletedBookings != 1 || first.DeletedRides != 1 {
		t.Fatalf("first run = %+v, want 1 booking and 1 ride", first)
	}
	if second.DeletedBookings != 0 || second.DeletedRides != 0 {
		t.Fatalf("second run = %+v, want nothing deleted", second)
	}
}

// Concurrent sweeps over the same data must not double-count deletions.
func TestSweep_ConcurrentRuns(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day.Add(12*time.Hour))
	ride := f.addRide(t)
	for i := 0; i < 8; i++ {
		f.addBooking(t, ride.ID, types.BookingRequested, "08:00")
	}

	const runs = 4
	reports := make([]models.CleanupReport, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i] = f.sweeper.Run(context.Background(), cleanup.TriggerManual)
		}(i)
	}
	wg.Wait()

	totalBookings, totalRides := 0, 0
	for _, r := range reports {
		totalBookings += r.DeletedBookings
		totalRides += r.DeletedRides
	}
	if totalBookings != 8 {
		t.Fatalf("total deleted bookings = %d, want 8", totalBookings)
	}
	if totalRides != 1 {
		t.Fatalf("total deleted rides = %d, want 1", totalRides)
	}
	if f.rideExists(t, ride.ID) {
		t.Fatalf("ride survived concurrent sweeps")
	}
}

// Start sweeps on every tick and stops when the context is cancelled.
func TestSweeper_StartTicks(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	f := newSweepFixture(t, day.Add(12*time.Hour))
	ride := f.addRide(t)
	b := f.addBooking(t, ride.ID, types.BookingRequested, "08:00")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sweeper.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for f.bookingExists(t, b.ID) {
		f.clk.Tick()
		select {
		case <-deadline:
			t.Fatalf("booking not swept after ticks")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop on cancel")
	}
}
