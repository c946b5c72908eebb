package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Dates are stored as UTC midnight so equality on booking_date does not
// depend on the server timezone.
func NewDate(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, err
	}
	return DateOf(t), nil
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// Combine joins a calendar date and a time of day into one instant in loc.
func Combine(d datatypes.Date, t datatypes.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, day := time.Time(d).Date()
	clock := time.Duration(t)
	h := int(clock / time.Hour)
	min := int(clock % time.Hour / time.Minute)
	sec := int(clock % time.Minute / time.Second)
	return time.Date(y, m, day, h, min, sec, 0, loc)
}
