package market

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DayLayout is the layout of market day keys ("2024-01-15").
const DayLayout = "2006-01-02"

// DefaultTimezone is the trading calendar used when none is configured.
const DefaultTimezone = "America/New_York"

// Calendar maps instants onto trading days in a fixed timezone. The zero
// value uses DefaultTimezone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar for the named IANA timezone.
func NewCalendar(tz string) (Calendar, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Calendar{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return Calendar{loc: loc}, nil
}

var eastern = mustLoad(DefaultTimezone)

func mustLoad(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		// tzdata is embedded, so this only fails for a bad constant
		panic(err)
	}
	return loc
}

// Location returns the calendar timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return eastern
	}
	return c.loc
}

// DayKey returns the trading day containing t, independent of the offset
// t was recorded with.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(DayLayout)
}

// DayBounds returns the [start, end) instants of the trading day key.
func (c Calendar) DayBounds(day string) (time.Time, time.Time, error) {
	loc := c.Location()
	t, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

// DayKey returns the trading day of t under the default calendar.
func DayKey(t time.Time) string {
	return Calendar{}.DayKey(t)
}
