package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
	"github.com/rideapp/ride-booking-system/pkg/wshub"
)

type Admin struct {
	cleanup  CleanupService
	hub      *wshub.Hub
	upgrader websocket.Upgrader
	l        logger.Logger
}

type CleanupService interface {
	Run(ctx context.Context, trigger string) models.CleanupReport
}

func NewAdmin(cleanup CleanupService, hub *wshub.Hub, l logger.Logger) *Admin {
	return &Admin{
		cleanup: cleanup,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		l: l,
	}
}

// Cleanup godoc
// @Summary      Run expiry sweep
// @Description  Triggers one expiry sweep immediately and returns its report
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  models.CleanupReport
// @Router       /admin/cleanup [post]
func (h *Admin) Cleanup(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionManualSweep)

	report := h.cleanup.Run(ctx, "manual")

	h.l.Info(ctx, "manual cleanup completed",
		"deleted_bookings", report.DeletedBookings,
		"deleted_rides", report.DeletedRides,
		"skipped", report.SkippedRecords,
	)

	if err := writeJSON(w, http.StatusOK, envelope{"report": report}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Events upgrades the request to a WebSocket subscription on the lifecycle
// event feed. The connection stays registered until the peer goes away.
func (h *Admin) Events(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "admin_event_feed")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	id, err := uuid.New()
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "could not assign subscriber id", err)
		conn.Close()
		return
	}

	sub := wshub.NewConn(id, conn)
	if err := h.hub.Add(sub); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "could not register subscriber", err)
		conn.Close()
		return
	}
	h.l.Info(ctx, "admin subscribed to event feed", "conn_id", id)

	// Drain the read side so close frames are processed.
	go func() {
		defer h.hub.Delete(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
