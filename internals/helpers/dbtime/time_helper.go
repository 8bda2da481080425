// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"time"

	"dancestudio_backend/internals/configs"
)

// Clock returns "now"; services take one so tests can pin the date.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

// CalendarDay strips the clock part of t as seen in loc. DATE columns come
// back as midnight UTC, so their Y-M-D is read as-is.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOnly keeps the stored Y-M-D of a DATE column.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSince counts whole calendar days from date to now in the studio timezone.
// Negative when date lies in the future.
func DaysSince(date time.Time, now time.Time) int {
	today := CalendarDay(now, configs.Location())
	return int(today.Sub(DateOnly(date)).Hours() / 24)
}

// ParseDate reads "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
