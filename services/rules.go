package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/table-booking/models"
	"gorm.io/datatypes"
)

// Rules are the temporal business rules applied before any table search.
type Rules struct {
	Opening          datatypes.Time
	Closing          datatypes.Time
	CancellationLock time.Duration
	Location         *time.Location
}

func DefaultRules() Rules {
	return Rules{
		Opening:          datatypes.NewTime(9, 0, 0, 0),
		Closing:          datatypes.NewTime(22, 0, 0, 0),
		CancellationLock: 2 * time.Hour,
		Location:         time.Local,
	}
}

// WithinHours is inclusive on both ends.
func (r Rules) WithinHours(t datatypes.Time) bool {
	return t >= r.Opening && t <= r.Closing
}

func (r Rules) At(d datatypes.Date, t datatypes.Time) time.Time {
	return models.Combine(d, t, r.location())
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func (r Rules) hoursError() *BookingError {
	return ErrOutsideOpeningHours.withMessage("Bookings can only be made between %s and %s.",
		formatClock(r.Opening), formatClock(r.Closing))
}

func (r Rules) lockError() *BookingError {
	return ErrCancellationLocked.withMessage("Bookings cannot be cancelled within %s of the reservation time.",
		formatLock(r.CancellationLock))
}

func formatClock(t datatypes.Time) string {
	return time.Time{}.Add(time.Duration(t)).Format("3:04 PM")
}

func formatLock(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
