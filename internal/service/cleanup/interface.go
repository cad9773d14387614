package cleanup

import (
	"context"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type (
	RideStore interface {
		Find(ctx context.Context, id uuid.UUID) (*models.Ride, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*models.Ride, error)
	}

	BookingStore interface {
		Find(ctx context.Context, id uuid.UUID) (*models.Booking, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*models.Booking, error)
		ListByRide(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error)
	}

	EventPublisher interface {
		PublishBookingEvent(ctx context.Context, ev models.BookingEvent) error
	}
)
