package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type Auth struct {
	service AuthService
	l       logger.Logger
}

type AuthService interface {
	Login(ctx context.Context, userID uuid.UUID) (string, error)
}

func NewAuth(service AuthService, l logger.Logger) *Auth {
	return &Auth{
		service: service,
		l:       l,
	}
}

type loginRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

// Login godoc
// @Summary      Issue token
// @Description  Issues a bearer token for an existing directory user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "User ID"
// @Success      200  {object}  map[string]string
// @Router       /auth/token [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "login")

	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID.IsNil() {
		badRequestResponse(w, errors.New("user_id is required").Error())
		return
	}

	token, err := h.service.Login(ctx, req.UserID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "login failed", err)
		errorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"token": token}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
