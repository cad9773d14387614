package dto

import (
	"errors"
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/service/booking"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type CreateBookingRequest struct {
	RideID            uuid.UUID `json:"ride_id"`
	Pickup            string    `json:"pickup,omitempty"`
	Drop              string    `json:"drop,omitempty"`
	ScheduledTimeText string    `json:"scheduled_time,omitempty"`
	Fare              *float64  `json:"fare,omitempty"`
	DistanceMiles     *float64  `json:"distance_miles,omitempty"`
}

func (r CreateBookingRequest) Validate() error {
	if r.RideID.IsNil() {
		return errors.New("ride_id is required")
	}
	if r.Fare != nil && *r.Fare < 0 {
		return errors.New("fare must not be negative")
	}
	return nil
}

func (r CreateBookingRequest) ToRequest() booking.BookingRequest {
	return booking.BookingRequest{
		Pickup:            r.Pickup,
		Drop:              r.Drop,
		ScheduledTimeText: r.ScheduledTimeText,
		Fare:              r.Fare,
		DistanceMiles:     r.DistanceMiles,
	}
}

type UpdateBookingRequest struct {
	Pickup            *string  `json:"pickup,omitempty"`
	Drop              *string  `json:"drop,omitempty"`
	ScheduledTimeText *string  `json:"scheduled_time,omitempty"`
	Fare              *float64 `json:"fare,omitempty"`
}

func (r UpdateBookingRequest) Validate() error {
	if r.Pickup == nil && r.Drop == nil && r.ScheduledTimeText == nil && r.Fare == nil {
		return errors.New("at least one field must be provided")
	}
	if r.Fare != nil && *r.Fare < 0 {
		return errors.New("fare must not be negative")
	}
	return nil
}

func (r UpdateBookingRequest) ToPatch() models.BookingPatch {
	return models.BookingPatch{
		Pickup:            r.Pickup,
		Drop:              r.Drop,
		ScheduledTimeText: r.ScheduledTimeText,
		Fare:              r.Fare,
	}
}

type BookingResponse struct {
	ID                uuid.UUID `json:"id"`
	RideID            uuid.UUID `json:"ride_id"`
	RiderID           uuid.UUID `json:"rider_id"`
	Pickup            string    `json:"pickup"`
	Drop              string    `json:"drop"`
	ScheduledTimeText string    `json:"scheduled_time"`
	DistanceMiles     float64   `json:"distance_miles"`
	Fare              float64   `json:"fare"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func FromBooking(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		RideID:            b.RideID,
		RiderID:           b.RiderID,
		Pickup:            b.Pickup,
		Drop:              b.Drop,
		ScheduledTimeText: b.ScheduledTimeText,
		DistanceMiles:     b.DistanceMiles,
		Fare:              b.Fare,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt,
	}
}

func FromBookings(bookings []*models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, FromBooking(b))
	}
	return out
}
