package handler

import (
	"context"
	"net/http"

	"github.com/rideapp/ride-booking-system/internal/adapter/http/handler/dto"
	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/internal/service/booking"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type Ride struct {
	service RideService
	l       logger.Logger
}

type RideService interface {
	CreateRide(ctx context.Context, driverID uuid.UUID, in booking.RideInput) (*models.Ride, error)
	CreateRideRequest(ctx context.Context, in booking.RideInput) (*models.Ride, error)
	GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error)
	ListRides(ctx context.Context) ([]*models.Ride, error)
	AvailableRides(ctx context.Context) ([]*models.Ride, error)
	BookingsByRide(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error)
}

func NewRide(service RideService, l logger.Logger) *Ride {
	return &Ride{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Create ride
// @Description  Driver posts a new ride offer
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateRideRequest true "Ride details"
// @Success      201  {object}  dto.RideResponse
// @Router       /rides [post]
func (h *Ride) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCreateRide)

	user := models.UserFromContext(ctx)
	if user == nil || user.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.CreateRideRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.l.Warn(ctx, "invalid request data", "err", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	ride, err := h.service.CreateRide(ctx, user.ID, req.ToInput())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create ride", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"ride": dto.FromRide(ride)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// CreateRequest godoc
// @Summary      Create ride request
// @Description  Passenger posts a driverless ride request
// @Tags         Rides
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateRideRequest true "Ride details"
// @Success      201  {object}  dto.RideResponse
// @Router       /ride-requests [post]
func (h *Ride) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCreateRide)

	var req dto.CreateRideRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.l.Warn(ctx, "invalid request data", "err", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	ride, err := h.service.CreateRideRequest(ctx, req.ToInput())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create ride request", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"ride": dto.FromRide(ride)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Get godoc
// @Summary      Get ride
// @Tags         Rides
// @Produce      json
// @Param        ride_id path string true "Ride ID"
// @Success      200  {object}  dto.RideResponse
// @Router       /rides/{ride_id} [get]
func (h *Ride) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_ride")

	rideID, err := pathID(r, "ride_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.GetRide(ctx, rideID)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"ride": dto.FromRide(ride)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// List godoc
// @Summary      List rides
// @Description  Lists all rides; pass available=true for bookable rides only
// @Tags         Rides
// @Produce      json
// @Success      200  {array}  dto.RideResponse
// @Router       /rides [get]
func (h *Ride) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_rides")

	var (
		rides []*models.Ride
		err   error
	)
	if r.URL.Query().Get("available") == "true" {
		rides, err = h.service.AvailableRides(ctx)
	} else {
		rides, err = h.service.ListRides(ctx)
	}
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list rides", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"rides": dto.FromRides(rides)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Bookings godoc
// @Summary      List ride bookings
// @Tags         Rides
// @Produce      json
// @Param        ride_id path string true "Ride ID"
// @Success      200  {array}  dto.BookingResponse
// @Router       /rides/{ride_id}/bookings [get]
func (h *Ride) Bookings(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_ride_bookings")

	rideID, err := pathID(r, "ride_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := h.service.BookingsByRide(ctx, rideID)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
