package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rideapp/ride-booking-system/config"
	"github.com/rideapp/ride-booking-system/internal/adapter/http/handler"
	"github.com/rideapp/ride-booking-system/internal/adapter/http/middleware"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/wshub"
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	log  logger.Logger
}

type handlers struct {
	ride    *handler.Ride
	booking *handler.Booking
	admin   *handler.Admin
	auth    *handler.Auth
	health  *handler.Health
}

func New(
	cfg config.Config,
	rideService handler.RideService,
	bookingService handler.BookingService,
	cleanupService handler.CleanupService,
	authService handler.AuthService,
	authMiddleware middleware.AuthService,
	hub *wshub.Hub,
	log logger.Logger,
) (*API, error) {
	if authService == nil || authMiddleware == nil {
		return nil, errors.New("auth service is required")
	}

	routes := &handlers{
		ride:    handler.NewRide(rideService, log),
		booking: handler.NewBooking(bookingService, log),
		admin:   handler.NewAdmin(cleanupService, hub, log),
		auth:    handler.NewAuth(authService, log),
		health:  handler.NewHealth(cfg.ServiceName, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(authMiddleware, log),
		addr:   fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		log:    log,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	api.setupRoutes()

	return api, nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, types.ActionHTTPStart)
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, types.ActionHTTPStop)

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// withMiddleware applies the outer middleware chain to the mux.
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(a.m.Logging(a.m.Auth(a.mux)))))
}
