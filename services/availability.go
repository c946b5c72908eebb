package services

import (
	"time"

	"github.com/yeremiapane/table-booking/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const lastSecondOfDay = 24*time.Hour - time.Second

// ConflictPolicy decides which neighbouring bookings make a table busy.
type ConflictPolicy struct {
	// Window is applied on both sides of the requested time, inclusive.
	Window time.Duration
	// Blocking lists the statuses that count inside the window.
	Blocking []models.BookingStatus
}

// DefaultConflictPolicy is shared by booking, editing and the public
// availability check.
var DefaultConflictPolicy = ConflictPolicy{
	Window:   time.Hour,
	Blocking: []models.BookingStatus{models.StatusPending, models.StatusConfirmed},
}

// bounds clamps the window to the same calendar day.
func (p ConflictPolicy) bounds(t datatypes.Time) (datatypes.Time, datatypes.Time) {
	lo := time.Duration(t) - p.Window
	if lo < 0 {
		lo = 0
	}
	hi := time.Duration(t) + p.Window
	if hi > lastSecondOfDay {
		hi = lastSecondOfDay
	}
	return datatypes.Time(lo), datatypes.Time(hi)
}

func (p ConflictPolicy) blockingStatuses() []string {
	out := make([]string, 0, len(p.Blocking))
	for _, st := range p.Blocking {
		out = append(out, string(st))
	}
	return out
}

type Slot struct {
	Date datatypes.Date
	Time datatypes.Time
}

// TableFinder computes the tables that can take a party at a slot.
type TableFinder interface {
	FindAvailableTables(db *gorm.DB, slot Slot, partySize int, excludeBookingID uint) ([]models.Table, error)
}

type Resolver struct {
	Policy ConflictPolicy
}

func NewResolver(policy ConflictPolicy) *Resolver {
	return &Resolver{Policy: policy}
}

// FindAvailableTables returns every table with capacity >= partySize that
// has no booking at exactly the slot and no blocking booking inside the
// window, smallest capacity first. excludeBookingID (0 for none) is left
// out of both conflict sets so a booking never conflicts with itself.
//
// Run it on the same tx that writes the booking.
func (r *Resolver) FindAvailableTables(db *gorm.DB, slot Slot, partySize int, excludeBookingID uint) ([]models.Table, error) {
	// Any status: the slot unique index does not look at status either.
	exact := db.Model(&models.Booking{}).
		Select("table_id").
		Where("booking_date = ? AND booking_time = ?", slot.Date, slot.Time)

	lo, hi := r.Policy.bounds(slot.Time)
	buffer := db.Model(&models.Booking{}).
		Select("table_id").
		Where("booking_date = ? AND booking_time BETWEEN ? AND ?", slot.Date, lo, hi).
		Where("status IN ?", r.Policy.blockingStatuses())

	if excludeBookingID != 0 {
		exact = exact.Where("id <> ?", excludeBookingID)
		buffer = buffer.Where("id <> ?", excludeBookingID)
	}

	var tables []models.Table
	err := db.Where("capacity >= ?", partySize).
		Where("id NOT IN (?)", exact).
		Where("id NOT IN (?)", buffer).
		Order("capacity ASC").
		Order("number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}
