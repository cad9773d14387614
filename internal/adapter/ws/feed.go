// Package ws streams lifecycle events to connected admin dashboards.
package ws

import (
	"context"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/pkg/wshub"
)

// Feed broadcasts every lifecycle event to the hub's subscribers. It is a
// read-only projection: dropped messages are never retried.
type Feed struct {
	hub *wshub.Hub
}

func NewFeed(hub *wshub.Hub) *Feed {
	return &Feed{hub: hub}
}

func (f *Feed) PublishBookingEvent(_ context.Context, ev models.BookingEvent) error {
	f.hub.Broadcast(ev)
	return nil
}
