package booking

import (
	"context"
	"errors"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type (
	// RideStore is a transactional collection of rides keyed by id.
	RideStore interface {
		Find(ctx context.Context, id uuid.UUID) (*models.Ride, error)
		Save(ctx context.Context, ride *models.Ride) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*models.Ride, error)
	}

	// BookingStore is a transactional collection of bookings keyed by id.
	BookingStore interface {
		Find(ctx context.Context, id uuid.UUID) (*models.Booking, error)
		Save(ctx context.Context, booking *models.Booking) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*models.Booking, error)
		ListByRide(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error)
	}

	// UserDirectory is the external user collaborator; only lookups are needed.
	UserDirectory interface {
		Find(ctx context.Context, id uuid.UUID) (*models.User, error)
	}

	// EventPublisher receives lifecycle events. Publish failures are logged,
	// never surfaced to callers of the lifecycle operations.
	EventPublisher interface {
		PublishBookingEvent(ctx context.Context, ev models.BookingEvent) error
	}
)

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(ctx context.Context, ev models.BookingEvent) error {
	return nil
}

// MultiPublisher fans an event out to several publishers. Every publisher
// sees the event even when an earlier one fails.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishBookingEvent(ctx context.Context, ev models.BookingEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishBookingEvent(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
