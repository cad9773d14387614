package dto

import (
	"errors"
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/service/booking"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type CreateRideRequest struct {
	Pickup               string    `json:"pickup"`
	Drop                 string    `json:"drop"`
	ScheduledAt          time.Time `json:"scheduled_at,omitzero"`
	Price                float64   `json:"price"`
	DistanceMiles        float64   `json:"distance_miles"`
	EstimatedDurationMin int       `json:"estimated_duration_min"`
}

func (r CreateRideRequest) Validate() error {
	if r.Pickup == "" {
		return errors.New("pickup is required")
	}
	if r.Drop == "" {
		return errors.New("drop is required")
	}
	if r.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func (r CreateRideRequest) ToInput() booking.RideInput {
	return booking.RideInput{
		Pickup:               r.Pickup,
		Drop:                 r.Drop,
		ScheduledAt:          r.ScheduledAt,
		Price:                r.Price,
		DistanceMiles:        r.DistanceMiles,
		EstimatedDurationMin: r.EstimatedDurationMin,
	}
}

type RideResponse struct {
	ID                   uuid.UUID  `json:"id"`
	DriverID             *uuid.UUID `json:"driver_id,omitempty"`
	Pickup               string     `json:"pickup"`
	Drop                 string     `json:"drop"`
	ScheduledAt          time.Time  `json:"scheduled_at,omitzero"`
	Price                float64    `json:"price"`
	DistanceMiles        float64    `json:"distance_miles"`
	EstimatedDurationMin int        `json:"estimated_duration_min"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
}

func FromRide(r *models.Ride) RideResponse {
	return RideResponse{
		ID:                   r.ID,
		DriverID:             r.DriverID,
		Pickup:               r.Pickup,
		Drop:                 r.Drop,
		ScheduledAt:          r.ScheduledAt,
		Price:                r.Price,
		DistanceMiles:        r.DistanceMiles,
		EstimatedDurationMin: r.EstimatedDurationMin,
		Status:               string(r.Status),
		CreatedAt:            r.CreatedAt,
	}
}

func FromRides(rides []*models.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, FromRide(r))
	}
	return out
}
