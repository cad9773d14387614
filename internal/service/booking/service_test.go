package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rideapp/ride-booking-system/internal/adapter/memstore"
	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/internal/service/booking"
	"github.com/rideapp/ride-booking-system/internal/service/cleanup"
	"github.com/rideapp/ride-booking-system/pkg/clock"
	"github.com/rideapp/ride-booking-system/pkg/keylock"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (p *capturePublisher) PublishBookingEvent(_ context.Context, ev models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) byType(t string) []models.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.BookingEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	svc      *booking.Service
	rides    *memstore.RideStore
	bookings *memstore.BookingStore
	users    *memstore.UserStore
	clk      *clock.Fake
	events   *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		rides:    memstore.NewRideStore(),
		bookings: memstore.NewBookingStore(),
		users:    memstore.NewUserStore(),
		clk:      clock.NewFake(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		events:   &capturePublisher{},
	}
	f.svc = booking.NewService(
		f.rides, f.bookings, f.users,
		f.events, keylock.New(), f.clk, logger.Discard(),
	)
	return f
}

func (f *fixture) addUser(t *testing.T, role types.UserRole, phone string) *models.User {
	t.Helper()
	u := models.User{
		ID:     uuid.MustNew(),
		Name:   "user-" + phone,
		Phone:  phone,
		Role:   role,
		Status: types.UserActive,
	}
	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return &u
}

func (f *fixture) addRide(t *testing.T, driverID uuid.UUID) *models.Ride {
	t.Helper()
	ride, err := f.svc.CreateRide(context.Background(), driverID, booking.RideInput{
		Pickup:        "Downtown",
		Drop:          "Airport",
		ScheduledAt:   f.clk.Now().Add(2 * time.Hour),
		Price:         18.50,
		DistanceMiles: 7.2,
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func (f *fixture) addBooking(t *testing.T, rideID, riderID uuid.UUID) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), rideID, riderID, booking.BookingRequest{})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCreateRide_UnknownDriver(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRide(context.Background(), uuid.MustNew(), booking.RideInput{})
	if !errors.Is(err, types.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCreateRideRequest_NoDriver(t *testing.T) {
	f := newFixture(t)

	ride, err := f.svc.CreateRideRequest(context.Background(), booking.RideInput{
		Pickup: "Downtown", Drop: "Airport",
	})
	if err != nil {
		t.Fatalf("create ride request: %v", err)
	}
	if ride.DriverID != nil {
		t.Fatalf("driver = %v, want nil", ride.DriverID)
	}
	if ride.Status != types.RidePending {
		t.Fatalf("status = %s, want %s", ride.Status, types.RidePending)
	}
}

func TestCreateBooking_DefaultsFromRide(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser(t, types.RoleDriver, "+77010000001")
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	ride := f.addRide(t, driver.ID)

	b := f.addBooking(t, ride.ID, rider.ID)

	if b.Pickup != "Downtown" || b.Drop != "Airport" {
		t.Fatalf("locations = %q -> %q, want ride defaults", b.Pickup, b.Drop)
	}
	if b.Fare != 18.50 {
		t.Fatalf("fare = %v, want 18.50", b.Fare)
	}
	if b.DistanceMiles != 7.2 {
		t.Fatalf("distance = %v, want 7.2", b.DistanceMiles)
	}
	if b.ScheduledTimeText != "12:00" {
		t.Fatalf("time text = %q, want 12:00", b.ScheduledTimeText)
	}
	if b.Status != types.BookingRequested {
		t.Fatalf("status = %s, want %s", b.Status, types.BookingRequested)
	}
	if got := f.events.byType(models.EventBookingRequested); len(got) != 1 {
		t.Fatalf("booking.requested events = %d, want 1", len(got))
	}
}

func TestCreateBooking_OverridesKept(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser(t, types.RoleDriver, "+77010000001")
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	ride := f.addRide(t, driver.ID)

	fare := 9.99
	b, err := f.svc.CreateBooking(context.Background(), ride.ID, rider.ID, booking.BookingRequest{
		Pickup:            "Left Bank",
		ScheduledTimeText: "18:45",
		Fare:              &fare,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if b.Pickup != "Left Bank" {
		t.Fatalf("pickup = %q, want override", b.Pickup)
	}
	if b.Drop != "Airport" {
		t.Fatalf("drop = %q, want ride default", b.Drop)
	}
	if b.ScheduledTimeText != "18:45" {
		t.Fatalf("time text = %q, want 18:45", b.ScheduledTimeText)
	}
	if b.Fare != 9.99 {
		t.Fatalf("fare = %v, want 9.99", b.Fare)
	}
}

func TestCreateBooking_SelfBookingBlocked(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser(t, types.RoleDriver, "+77010000001")
	secondAccount := f.addUser(t, types.RoleRider, "+77010000001")
	ride := f.addRide(t, driver.ID)

	_, err := f.svc.CreateBooking(context.Background(), ride.ID, secondAccount.ID, booking.BookingRequest{})
	if !errors.Is(err, types.ErrSelfBookingBlocked) {
		t.Fatalf("err = %v, want ErrSelfBookingBlocked", err)
	}
}

func TestCreateBooking_UnknownRide(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")

	_, err := f.svc.CreateBooking(context.Background(), uuid.MustNew(), rider.ID, booking.BookingRequest{})
	if !errors.Is(err, types.ErrRideNotFound) {
		t.Fatalf("err = %v, want ErrRideNotFound", err)
	}
}

// gatedRideStore pauses the first Find so a sweep can be raced against an
// in-flight CreateBooking.
type gatedRideStore struct {
	*memstore.RideStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRideStore) Find(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	ride, err := g.RideStore.Find(ctx, id)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return ride, err
}

// A booking created while a sweep reclaims its ride must either see the ride
// gone or keep it alive. It must never persist against a deleted ride.
func TestCreateBooking_SweepCannotOrphanBooking(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	clk := clock.NewFake(day.Add(12 * time.Hour))
	rides := memstore.NewRideStore()
	bookings := memstore.NewBookingStore()
	users := memstore.NewUserStore()
	locks := keylock.New()
	ctx := context.Background()

	gated := &gatedRideStore{
		RideStore: rides,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := booking.NewService(gated, bookings, users, booking.NopPublisher{}, locks, clk, logger.Discard())
	sweeper := cleanup.NewSweeper(
		rides, bookings, nil, locks, clk,
		cleanup.Policy{Grace: 20 * time.Minute, AcceptedRetention: 48 * time.Hour},
		10*time.Minute,
		logger.Discard(),
	)

	ride := &models.Ride{ID: uuid.MustNew(), Status: types.RidePending, CreatedAt: clk.Now()}
	if err := rides.Save(ctx, ride); err != nil {
		t.Fatalf("save ride: %v", err)
	}
	stale := &models.Booking{
		ID:                uuid.MustNew(),
		RideID:            ride.ID,
		RiderID:           uuid.MustNew(),
		ScheduledTimeText: "08:00",
		Status:            types.BookingRequested,
		CreatedAt:         clk.Now(),
	}
	if err := bookings.Save(ctx, stale); err != nil {
		t.Fatalf("save booking: %v", err)
	}
	rider := models.User{ID: uuid.MustNew(), Name: "rider", Phone: "+77010000009", Role: types.RoleRider, Status: types.UserActive}
	if err := users.Save(ctx, rider); err != nil {
		t.Fatalf("save user: %v", err)
	}

	var created *models.Booking
	var createErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		created, createErr = svc.CreateBooking(ctx, ride.ID, rider.ID, booking.BookingRequest{ScheduledTimeText: "18:00"})
	}()

	// The create is now past its ride Find, holding the ride lock.
	<-gated.entered

	sweepDone := make(chan models.CleanupReport, 1)
	go func() {
		sweepDone <- sweeper.Run(ctx, cleanup.TriggerManual)
	}()
	close(gated.release)
	<-done
	report := <-sweepDone

	if createErr != nil {
		t.Fatalf("create booking: %v", createErr)
	}
	if report.DeletedBookings != 1 {
		t.Fatalf("deleted bookings = %d, want 1 (the stale one)", report.DeletedBookings)
	}
	if report.DeletedRides != 0 {
		t.Fatalf("deleted rides = %d, want 0", report.DeletedRides)
	}
	if _, err := rides.Find(ctx, ride.ID); err != nil {
		t.Fatalf("ride reclaimed under a live booking: %v", err)
	}
	if _, err := bookings.Find(ctx, created.ID); err != nil {
		t.Fatalf("created booking missing: %v", err)
	}
}

func TestAcceptBooking_ConfirmsRide(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, err := f.svc.CreateRideRequest(context.Background(), booking.RideInput{Pickup: "A", Drop: "B"})
	if err != nil {
		t.Fatalf("create ride request: %v", err)
	}
	b := f.addBooking(t, ride.ID, rider.ID)

	got, err := f.svc.AcceptBooking(context.Background(), b.ID, driver.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != types.BookingAccepted {
		t.Fatalf("booking status = %s, want %s", got.Status, types.BookingAccepted)
	}

	confirmed, err := f.svc.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if confirmed.Status != types.RideConfirmed {
		t.Fatalf("ride status = %s, want %s", confirmed.Status, types.RideConfirmed)
	}
	if confirmed.DriverID == nil || *confirmed.DriverID != driver.ID {
		t.Fatalf("ride driver = %v, want %s", confirmed.DriverID, driver.ID)
	}

	if got := f.events.byType(models.EventBookingAccepted); len(got) != 1 {
		t.Fatalf("booking.accepted events = %d, want 1", len(got))
	}
	if got := f.events.byType(models.EventRideConfirmed); len(got) != 1 {
		t.Fatalf("ride.confirmed events = %d, want 1", len(got))
	}
}

func TestAcceptBooking_AdminNotEligible(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	admin := f.addUser(t, types.RoleAdmin, "+77010000009")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	_, err := f.svc.AcceptBooking(context.Background(), b.ID, admin.ID)
	if !errors.Is(err, types.ErrRoleNotEligible) {
		t.Fatalf("err = %v, want ErrRoleNotEligible", err)
	}
}

func TestAcceptBooking_SelfBookingBlocked(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	sameIdentity := f.addUser(t, types.RoleDriver, "+77010000002")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	_, err := f.svc.AcceptBooking(context.Background(), b.ID, sameIdentity.ID)
	if !errors.Is(err, types.ErrSelfBookingBlocked) {
		t.Fatalf("err = %v, want ErrSelfBookingBlocked", err)
	}
}

func TestAcceptBooking_AlreadyAccepted(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	first := f.addUser(t, types.RoleDriver, "+77010000003")
	second := f.addUser(t, types.RoleDriver, "+77010000004")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	if _, err := f.svc.AcceptBooking(context.Background(), b.ID, first.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	_, err := f.svc.AcceptBooking(context.Background(), b.ID, second.ID)
	if !errors.Is(err, types.ErrBookingAlreadyAccepted) {
		t.Fatalf("err = %v, want ErrBookingAlreadyAccepted", err)
	}
}

func TestAcceptBooking_RejectedStaysRejected(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	if _, err := f.svc.RejectBooking(context.Background(), b.ID, driver.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := f.svc.AcceptBooking(context.Background(), b.ID, driver.ID)
	if !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestAcceptBooking_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")

	const drivers = 32
	candidates := make([]*models.User, drivers)
	for i := range candidates {
		candidates[i] = f.addUser(t, types.RoleDriver, "")
	}

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AcceptBooking(context.Background(), b.ID, candidates[i].ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, types.ErrBookingAlreadyAccepted):
		default:
			t.Fatalf("unexpected accept error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	confirmed, err := f.svc.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if confirmed.Status != types.RideConfirmed || confirmed.DriverID == nil {
		t.Fatalf("ride not confirmed with a driver after the race")
	}
	if got := f.events.byType(models.EventBookingAccepted); len(got) != 1 {
		t.Fatalf("booking.accepted events = %d, want 1", len(got))
	}
}

func TestRejectBooking_LeavesRideUntouched(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	got, err := f.svc.RejectBooking(context.Background(), b.ID, driver.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != types.BookingRejected {
		t.Fatalf("status = %s, want %s", got.Status, types.BookingRejected)
	}

	after, err := f.svc.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if after.Status != types.RidePending || after.DriverID != nil {
		t.Fatalf("ride changed by reject: status=%s driver=%v", after.Status, after.DriverID)
	}
}

func TestUpdateBooking_RecomputesDistanceOnLocationChange(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{
		Pickup: "A", Drop: "B", DistanceMiles: 99,
	})
	b := f.addBooking(t, ride.ID, rider.ID)

	pickup := "New Pickup"
	updated, err := f.svc.UpdateBooking(context.Background(), b.ID, models.BookingPatch{Pickup: &pickup})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Pickup != "New Pickup" {
		t.Fatalf("pickup = %q, want New Pickup", updated.Pickup)
	}
	if updated.DistanceMiles < 1.0 || updated.DistanceMiles > 11.0 {
		t.Fatalf("distance = %v, want estimate in [1.0, 11.0]", updated.DistanceMiles)
	}
	if updated.DistanceMiles == 99 {
		t.Fatalf("distance not recomputed after location change")
	}
}

func TestUpdateBooking_FareOnlyKeepsDistance(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{DistanceMiles: 4.4})
	b := f.addBooking(t, ride.ID, rider.ID)

	fare := 25.0
	updated, err := f.svc.UpdateBooking(context.Background(), b.ID, models.BookingPatch{Fare: &fare})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Fare != 25.0 {
		t.Fatalf("fare = %v, want 25.0", updated.Fare)
	}
	if updated.DistanceMiles != 4.4 {
		t.Fatalf("distance = %v, want 4.4 (unchanged)", updated.DistanceMiles)
	}
}

func TestUpdateBooking_AcceptedBlocked(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)
	if _, err := f.svc.AcceptBooking(context.Background(), b.ID, driver.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	pickup := "elsewhere"
	_, err := f.svc.UpdateBooking(context.Background(), b.ID, models.BookingPatch{Pickup: &pickup})
	if !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)

	if err := f.svc.CancelBooking(context.Background(), b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.GetBooking(context.Background(), b.ID); !errors.Is(err, types.ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
	if err := f.svc.CancelBooking(context.Background(), b.ID); !errors.Is(err, types.ErrBookingNotFound) {
		t.Fatalf("second cancel err = %v, want ErrBookingNotFound", err)
	}
}

func TestCancelBooking_AcceptedBlocked(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	b := f.addBooking(t, ride.ID, rider.ID)
	if _, err := f.svc.AcceptBooking(context.Background(), b.ID, driver.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if err := f.svc.CancelBooking(context.Background(), b.ID); !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestPendingBookings(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")

	ride, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	kept := f.addBooking(t, ride.ID, rider.ID)
	accepted := f.addBooking(t, ride.ID, rider.ID)
	if _, err := f.svc.AcceptBooking(context.Background(), accepted.ID, driver.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	pending, err := f.svc.PendingBookings(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != kept.ID {
		t.Fatalf("pending = %v, want only %s", pending, kept.ID)
	}
}

func TestAcceptedBookingsByDriver(t *testing.T) {
	f := newFixture(t)
	rider := f.addUser(t, types.RoleRider, "+77010000002")
	driver := f.addUser(t, types.RoleDriver, "+77010000003")
	other := f.addUser(t, types.RoleDriver, "+77010000004")

	rideA, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	rideB, _ := f.svc.CreateRideRequest(context.Background(), booking.RideInput{})
	a := f.addBooking(t, rideA.ID, rider.ID)
	b := f.addBooking(t, rideB.ID, rider.ID)

	if _, err := f.svc.AcceptBooking(context.Background(), a.ID, driver.ID); err != nil {
		t.Fatalf("accept a: %v", err)
	}
	if _, err := f.svc.AcceptBooking(context.Background(), b.ID, other.ID); err != nil {
		t.Fatalf("accept b: %v", err)
	}

	mine, err := f.svc.AcceptedBookingsByDriver(context.Background(), driver.ID)
	if err != nil {
		t.Fatalf("accepted by driver: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Fatalf("accepted = %v, want only %s", mine, a.ID)
	}
}
