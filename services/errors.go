package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindRejected
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// BookingError is an expected, user-facing outcome. Two BookingErrors
// match under errors.Is when their codes are equal, so a reworded
// message still matches its sentinel.
type BookingError struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

// Retryable reports whether repeating the same request may succeed.
func (e *BookingError) Retryable() bool {
	return e.Kind == KindConflict
}

func (e *BookingError) withMessage(format string, args ...interface{}) *BookingError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

var (
	ErrInvalidGuestCount   = &BookingError{Kind: KindValidation, Code: "invalid_guest_count", Field: "number_of_guests", Message: "Number of guests must be at least 1."}
	ErrInvalidDate         = &BookingError{Kind: KindValidation, Code: "invalid_date", Field: "booking_date", Message: "Invalid date format. Please use YYYY-MM-DD."}
	ErrInvalidTime         = &BookingError{Kind: KindValidation, Code: "invalid_time", Field: "booking_time", Message: "Invalid time format. Please use HH:MM."}
	ErrOutsideOpeningHours = &BookingError{Kind: KindValidation, Code: "outside_opening_hours", Field: "booking_time", Message: "Bookings can only be made between 9:00 AM and 10:00 PM."}
	ErrBookingInPast       = &BookingError{Kind: KindValidation, Code: "booking_in_past", Field: "booking_date", Message: "Booking date cannot be in the past."}
	ErrInvalidStatus       = &BookingError{Kind: KindValidation, Code: "invalid_status", Field: "status", Message: "Unknown booking status."}
	ErrInvalidTable        = &BookingError{Kind: KindValidation, Code: "invalid_table", Message: "Table number and capacity must be positive."}
	ErrInvalidCredentials  = &BookingError{Kind: KindUnauthorized, Code: "invalid_credentials", Message: "Invalid credentials."}
	ErrInvalidRegistration = &BookingError{Kind: KindValidation, Code: "invalid_registration", Message: "Username and password are required."}

	ErrNoTablesAvailable  = &BookingError{Kind: KindRejected, Code: "no_tables_available", Message: "No tables available for your requested date, time, and number of guests."}
	ErrTableUnavailable   = &BookingError{Kind: KindRejected, Code: "table_unavailable", Message: "The selected table is not available at the requested time."}
	ErrTableTooSmall      = &BookingError{Kind: KindRejected, Code: "table_too_small", Message: "The selected table cannot seat that many guests."}
	ErrCancellationLocked = &BookingError{Kind: KindRejected, Code: "cancellation_locked", Message: "Bookings cannot be cancelled within 2 hours of the reservation time."}
	ErrAlreadyCancelled   = &BookingError{Kind: KindRejected, Code: "already_cancelled", Message: "This booking is already cancelled."}
	ErrBookingNotEditable = &BookingError{Kind: KindRejected, Code: "booking_not_editable", Message: "Only pending or confirmed bookings can be edited."}
	ErrIllegalTransition  = &BookingError{Kind: KindRejected, Code: "illegal_transition", Field: "status", Message: "This status change is not allowed."}
	ErrTableHasBookings   = &BookingError{Kind: KindRejected, Code: "table_has_bookings", Message: "This table cannot be deleted as it has active bookings."}
	ErrTableNumberTaken   = &BookingError{Kind: KindRejected, Code: "table_number_taken", Field: "number", Message: "A table with this number already exists."}
	ErrUsernameTaken      = &BookingError{Kind: KindRejected, Code: "username_taken", Field: "username", Message: "A user with that username already exists."}

	ErrBookingConflict = &BookingError{Kind: KindConflict, Code: "booking_conflict", Message: "Could not complete booking: the table was just taken. Please try again."}

	ErrBookingNotFound = &BookingError{Kind: KindNotFound, Code: "booking_not_found", Message: "Booking not found."}
	ErrTableNotFound   = &BookingError{Kind: KindNotFound, Code: "table_not_found", Message: "Table not found."}
	ErrUserNotFound    = &BookingError{Kind: KindNotFound, Code: "user_not_found", Message: "User not found."}

	ErrStaffOnly = &BookingError{Kind: KindForbidden, Code: "staff_only", Message: "You are not authorized to view this page."}
)

// AsBookingError unwraps err into a *BookingError when it carries one.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint fails") ||
		strings.Contains(msg, "violates foreign key constraint")
}
