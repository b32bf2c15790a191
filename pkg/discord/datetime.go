package discord

import "time"

// EventTimeLayout renders like "Sat 14 Jun 2025 at 18:30".
const EventTimeLayout = "Mon 02 Jan 2006 at 15:04"

// FormatEventDateTime renders t in loc, or "" for the zero time.
func FormatEventDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(EventTimeLayout)
}
