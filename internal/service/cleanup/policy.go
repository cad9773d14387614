package cleanup

import (
	"time"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/internal/timewindow"
)

// Policy decides when a booking has expired.
//
// Accepted bookings expire on age alone: once they are older than the
// retention window they are archived history and get swept. Everything else
// expires off its scheduled time text with a grace period, and a text the
// parser cannot read keeps the booking alive forever rather than guessing.
type Policy struct {
	Grace             time.Duration
	AcceptedRetention time.Duration
}

// BookingExpired reports whether b should be deleted at instant now.
func (p Policy) BookingExpired(b *models.Booking, now time.Time) bool {
	if b.Status == types.BookingAccepted {
		return now.After(b.CreatedAt.Add(p.AcceptedRetention))
	}

	at, ok := timewindow.Parse(b.ScheduledTimeText).Instant(now)
	if !ok {
		return false
	}
	return now.After(at.Add(p.Grace))
}
