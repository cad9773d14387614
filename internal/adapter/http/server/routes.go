package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rideapp/ride-booking-system/docs"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	mux, routes, m := a.mux, a.routes, a.m

	// System
	mux.HandleFunc("/health", routes.health.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/swagger/", httpSwagger.Handler())

	// Auth
	mux.HandleFunc("POST /auth/token", routes.auth.Login)

	// Rides
	mux.Handle("POST /rides", m.RequireRoles(routes.ride.Create, types.RoleDriver))               // Driver posts a ride offer
	mux.Handle("POST /ride-requests", m.RequireRoles(routes.ride.CreateRequest, types.RoleRider)) // Passenger posts a ride request
	mux.HandleFunc("GET /rides", routes.ride.List)
	mux.HandleFunc("GET /rides/{ride_id}", routes.ride.Get)
	mux.HandleFunc("GET /rides/{ride_id}/bookings", routes.ride.Bookings)

	// Bookings
	mux.Handle("POST /bookings", m.RequireRoles(routes.booking.Create, types.RoleRider))
	mux.Handle("POST /bookings/{booking_id}/accept", m.RequireRoles(routes.booking.Accept, types.RoleDriver, types.RoleRider))
	mux.Handle("POST /bookings/{booking_id}/reject", m.RequireRoles(routes.booking.Reject, types.RoleDriver, types.RoleRider))
	mux.Handle("PATCH /bookings/{booking_id}", m.RequireRoles(routes.booking.Update, types.RoleRider))
	mux.Handle("DELETE /bookings/{booking_id}", m.RequireRoles(routes.booking.Cancel, types.RoleRider))
	mux.HandleFunc("GET /bookings/pending", routes.booking.Pending)
	mux.Handle("GET /bookings/my", m.RequireRoles(routes.booking.Mine, types.RoleRider))
	mux.HandleFunc("GET /bookings/{booking_id}", routes.booking.Get)
	mux.Handle("GET /drivers/me/bookings", m.RequireRoles(routes.booking.Assigned, types.RoleDriver))

	// Admin
	mux.Handle("POST /admin/cleanup", m.RequireRoles(routes.admin.Cleanup, types.RoleAdmin)) // Trigger an expiry sweep
	mux.Handle("GET /ws/admin/events", m.RequireRoles(routes.admin.Events, types.RoleAdmin)) // Live lifecycle event feed
}
