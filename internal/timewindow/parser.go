// Package timewindow parses the free-form scheduled-time text carried by
// bookings. Parse never fails: any text it cannot understand comes back as
// the Unparseable kind, which the sweeper maps to "do not delete".
package timewindow

import (
	"regexp"
	"time"
)

type Kind int

const (
	// Unparseable means the text carried no recognizable time.
	Unparseable Kind = iota
	// TimeOfDay is a bare HH:MM wall-clock time, interpreted as today.
	TimeOfDay
	// DateTime is a fully qualified date and time.
	DateTime
)

// Window is the parsed form of a scheduled-time string.
type Window struct {
	Kind Kind

	// Hour/Minute are set for TimeOfDay.
	Hour   int
	Minute int

	// At is set for DateTime.
	At time.Time
}

// Strict 24-hour wall clock pattern; anything looser goes through the
// date-time layouts below.
var timeOfDayRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Layouts tried for full date-time text, local time unless the text carries
// its own offset.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Parse classifies text as a time of day, a full date-time, or unparseable.
func Parse(text string) Window {
	if timeOfDayRe.MatchString(text) {
		t, err := time.Parse("15:04", text)
		if err != nil {
			// Matched the shape but not a valid wall-clock time, e.g. "25:99".
			return Window{Kind: Unparseable}
		}
		return Window{Kind: TimeOfDay, Hour: t.Hour(), Minute: t.Minute()}
	}

	for _, layout := range dateTimeLayouts {
		if at, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return Window{Kind: DateTime, At: at}
		}
	}

	return Window{Kind: Unparseable}
}

// Instant resolves the window to a concrete instant relative to now.
// A TimeOfDay is anchored to now's calendar day in now's location.
// ok is false for Unparseable windows.
func (w Window) Instant(now time.Time) (at time.Time, ok bool) {
	switch w.Kind {
	case TimeOfDay:
		return time.Date(now.Year(), now.Month(), now.Day(), w.Hour, w.Minute, 0, 0, now.Location()), true
	case DateTime:
		return w.At, true
	default:
		return time.Time{}, false
	}
}
