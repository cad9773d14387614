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

type Booking struct {
	service BookingService
	l       logger.Logger
}

type BookingService interface {
	CreateBooking(ctx context.Context, rideID, riderID uuid.UUID, req booking.BookingRequest) (*models.Booking, error)
	AcceptBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error)
	RejectBooking(ctx context.Context, bookingID, driverID uuid.UUID) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID uuid.UUID, patch models.BookingPatch) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) error
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	PendingBookings(ctx context.Context) ([]*models.Booking, error)
	BookingsByRider(ctx context.Context, riderID uuid.UUID) ([]*models.Booking, error)
	AcceptedBookingsByDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Booking, error)
}

func NewBooking(service BookingService, l logger.Logger) *Booking {
	return &Booking{
		service: service,
		l:       l,
	}
}

func authenticatedUser(ctx context.Context, w http.ResponseWriter) *models.User {
	user := models.UserFromContext(ctx)
	if user == nil || user.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return user
}

// Create godoc
// @Summary      Create booking
// @Description  Rider requests a seat on a ride; unset fields default from the ride
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookingRequest true "Booking details"
// @Success      201  {object}  dto.BookingResponse
// @Router       /bookings [post]
func (h *Booking) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCreateBooking)

	user := authenticatedUser(ctx, w)
	if user == nil {
		return
	}

	var req dto.CreateBookingRequest
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

	b, err := h.service.CreateBooking(ctx, req.RideID, user.ID, req.ToRequest())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create booking", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"booking": dto.FromBooking(b)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Accept godoc
// @Summary      Accept booking
// @Description  Driver accepts a requested booking; first accept wins
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200  {object}  dto.BookingResponse
// @Router       /bookings/{booking_id}/accept [post]
func (h *Booking) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionAcceptBooking)

	user := authenticatedUser(ctx, w)
	if user == nil {
		return
	}

	bookingID, err := pathID(r, "booking_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.AcceptBooking(ctx, bookingID, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to accept booking", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(b)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Reject godoc
// @Summary      Reject booking
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200  {object}  dto.BookingResponse
// @Router       /bookings/{booking_id}/reject [post]
func (h *Booking) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionRejectBooking)

	user := authenticatedUser(ctx, w)
	if user == nil {
		return
	}

	bookingID, err := pathID(r, "booking_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.RejectBooking(ctx, bookingID, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to reject booking", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(b)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Update godoc
// @Summary      Update booking
// @Description  Rider edits a booking that is still requested
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Param        request body dto.UpdateBookingRequest true "Fields to change"
// @Success      200  {object}  dto.BookingResponse
// @Router       /bookings/{booking_id} [patch]
func (h *Booking) Update(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionUpdateBooking)

	bookingID, err := pathID(r, "booking_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.UpdateBookingRequest
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

	b, err := h.service.UpdateBooking(ctx, bookingID, req.ToPatch())
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update booking", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(b)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Cancel godoc
// @Summary      Cancel booking
// @Tags         Bookings
// @Param        booking_id path string true "Booking ID"
// @Success      204
// @Router       /bookings/{booking_id} [delete]
func (h *Booking) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCancelBooking)

	bookingID, err := pathID(r, "booking_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CancelBooking(ctx, bookingID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to cancel booking", err)
		serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary      Get booking
// @Tags         Bookings
// @Produce      json
// @Param        booking_id path string true "Booking ID"
// @Success      200  {object}  dto.BookingResponse
// @Router       /bookings/{booking_id} [get]
func (h *Booking) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_booking")

	bookingID, err := pathID(r, "booking_id")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.service.GetBooking(ctx, bookingID)
	if err != nil {
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"booking": dto.FromBooking(b)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Pending godoc
// @Summary      List pending bookings
// @Description  Bookings still awaiting a driver decision
// @Tags         Bookings
// @Produce      json
// @Success      200  {array}  dto.BookingResponse
// @Router       /bookings/pending [get]
func (h *Booking) Pending(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_pending_bookings")

	bookings, err := h.service.PendingBookings(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list pending bookings", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Mine godoc
// @Summary      List my bookings
// @Description  Bookings made by the authenticated rider
// @Tags         Bookings
// @Produce      json
// @Success      200  {array}  dto.BookingResponse
// @Router       /bookings/my [get]
func (h *Booking) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_my_bookings")

	user := authenticatedUser(ctx, w)
	if user == nil {
		return
	}

	bookings, err := h.service.BookingsByRider(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list rider bookings", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Assigned godoc
// @Summary      List accepted bookings for the driver
// @Description  Accepted bookings on rides assigned to the authenticated driver
// @Tags         Bookings
// @Produce      json
// @Success      200  {array}  dto.BookingResponse
// @Router       /drivers/me/bookings [get]
func (h *Booking) Assigned(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_assigned_bookings")

	user := authenticatedUser(ctx, w)
	if user == nil {
		return
	}

	bookings, err := h.service.AcceptedBookingsByDriver(ctx, user.ID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list assigned bookings", err)
		serviceErrorResponse(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"bookings": dto.FromBookings(bookings)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
