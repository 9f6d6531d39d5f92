package timeutil

import (
	"math"
	"time"
)

// Location is the zone used for API timestamps. Defaults to UTC and is set
// once at startup from server.timezone.
var Location = time.UTC

// SetLocation switches the application time zone. Unknown names keep UTC.
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Location = loc
	return nil
}

// Now returns the current time in the application zone
func Now() time.Time {
	return time.Now().In(Location)
}

// Clock abstracts the current time so age calculations can be tested
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// WholeDaysSince returns floor((now - since) / 24h), never negative
func WholeDaysSince(since, now time.Time) int {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
