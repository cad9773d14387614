package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

func TestRideStore_FindMissing(t *testing.T) {
	s := NewRideStore()

	_, err := s.Find(context.Background(), uuid.MustNew())
	if !errors.Is(err, types.ErrRideNotFound) {
		t.Fatalf("err = %v, want ErrRideNotFound", err)
	}
}

func TestRideStore_CloneOnRead(t *testing.T) {
	s := NewRideStore()
	ctx := context.Background()

	ride := &models.Ride{ID: uuid.MustNew(), Pickup: "Downtown", Status: types.RidePending}
	if err := s.Save(ctx, ride); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Find(ctx, ride.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Pickup = "mutated"

	again, err := s.Find(ctx, ride.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.Pickup != "Downtown" {
		t.Fatalf("pickup = %q, stored record was mutated through a read", again.Pickup)
	}
}

func TestRideStore_DeleteThenFind(t *testing.T) {
	s := NewRideStore()
	ctx := context.Background()

	ride := &models.Ride{ID: uuid.MustNew(), Status: types.RidePending}
	if err := s.Save(ctx, ride); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, ride.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Find(ctx, ride.ID); !errors.Is(err, types.ErrRideNotFound) {
		t.Fatalf("err = %v, want ErrRideNotFound", err)
	}
	if err := s.Delete(ctx, ride.ID); !errors.Is(err, types.ErrRideNotFound) {
		t.Fatalf("second delete err = %v, want ErrRideNotFound", err)
	}
}

func TestBookingStore_ListByRide(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()

	rideA := uuid.MustNew()
	rideB := uuid.MustNew()

	for i := 0; i < 3; i++ {
		b := &models.Booking{ID: uuid.MustNew(), RideID: rideA, Status: types.BookingRequested}
		if err := s.Save(ctx, b); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := s.Save(ctx, &models.Booking{ID: uuid.MustNew(), RideID: rideB}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.ListByRide(ctx, rideA)
	if err != nil {
		t.Fatalf("list by ride: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, b := range got {
		if b.RideID != rideA {
			t.Fatalf("booking %s belongs to ride %s", b.ID, b.RideID)
		}
	}
}

func TestUserStore_FindMissing(t *testing.T) {
	s := NewUserStore()

	_, err := s.Find(context.Background(), uuid.MustNew())
	if !errors.Is(err, types.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserStore_FindReturnsCopy(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u := models.User{ID: uuid.MustNew(), Name: "Aruzhan", Role: types.RoleRider}
	if err := s.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Find(ctx, u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Name = "mutated"

	again, err := s.Find(ctx, u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.Name != "Aruzhan" {
		t.Fatalf("name = %q, stored record was mutated through a read", again.Name)
	}
}
