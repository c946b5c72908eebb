package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no-show"
	StatusCompleted BookingStatus = "completed"
)

// BookingStatuses lists every status in display order.
var BookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusNoShow,
	StatusCompleted,
}

// statusTransitions holds the legal moves out of each status. Statuses
// without an entry are terminal.
var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range BookingStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s BookingStatus) Valid() bool {
	_, ok := ParseBookingStatus(string(s))
	return ok
}

func (s BookingStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Active reports whether a booking in this status still holds its table.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, st := range statusTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Label() string {
	switch s {
	case StatusNoShow:
		return "No-Show"
	case "":
		return ""
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

type Booking struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	TableID        uint           `gorm:"not null;uniqueIndex:idx_booking_slot,priority:1" json:"table_id"`
	Table          *Table         `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	BookingDate    datatypes.Date `gorm:"not null;index;uniqueIndex:idx_booking_slot,priority:2" json:"booking_date"`
	BookingTime    datatypes.Time `gorm:"not null;uniqueIndex:idx_booking_slot,priority:3" json:"booking_time"`
	NumberOfGuests int            `gorm:"not null" json:"number_of_guests"`
	Notes          *string        `gorm:"type:text" json:"notes,omitempty"`
	Status         BookingStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time      `gorm:"<-:create;not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}

// At returns the reservation moment in loc.
func (b *Booking) At(loc *time.Location) time.Time {
	return Combine(b.BookingDate, b.BookingTime, loc)
}

func (b *Booking) String() string {
	username := fmt.Sprintf("user %d", b.UserID)
	if b.User != nil {
		username = b.User.Username
	}
	table := fmt.Sprintf("%d", b.TableID)
	if b.Table != nil {
		table = fmt.Sprintf("%d", b.Table.Number)
	}
	return fmt.Sprintf("Booking by %s for Table %s on %s at %s (%s)",
		username, table, FormatDate(b.BookingDate), b.BookingTime.String(), b.Status)
}
