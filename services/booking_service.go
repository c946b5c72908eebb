package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// availabilityGrace lets the public availability check ask about the
// current minute.
const availabilityGrace = time.Minute

// Notifier receives lifecycle events after they are committed.
type Notifier interface {
	Publish(event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, interface{}) {}

type BookingRequest struct {
	Date   datatypes.Date
	Time   datatypes.Time
	Guests int
	Notes  *string
}

func (r BookingRequest) slot() Slot {
	return Slot{Date: r.Date, Time: r.Time}
}

// ParseBookingRequest builds a request from form/JSON input.
func ParseBookingRequest(date, clock string, guests int, notes *string) (BookingRequest, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return BookingRequest{}, ErrInvalidDate
	}
	t, err := models.ParseClock(clock)
	if err != nil {
		return BookingRequest{}, ErrInvalidTime
	}
	return BookingRequest{Date: d, Time: t, Guests: guests, Notes: notes}, nil
}

// StaffBookingRequest books a chosen table on behalf of a user.
type StaffBookingRequest struct {
	BookingRequest
	UserID  uint
	TableID uint
	Status  models.BookingStatus
}

// BookingService is the booking lifecycle manager.
type BookingService struct {
	store    *Store
	finder   TableFinder
	rules    Rules
	notifier Notifier

	// Now is the clock used by every temporal rule.
	Now func() time.Time
}

func NewBookingService(store *Store, finder TableFinder, rules Rules, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &BookingService{
		store:    store,
		finder:   finder,
		rules:    rules,
		notifier: notifier,
		Now:      time.Now,
	}
}

func (s *BookingService) Rules() Rules {
	return s.rules
}

func (s *BookingService) now() time.Time {
	return s.Now().In(s.rules.location())
}

func (s *BookingService) validateSlot(req BookingRequest, pastErr *BookingError) error {
	if req.Guests < 1 {
		return ErrInvalidGuestCount
	}
	if !s.rules.WithinHours(req.Time) {
		return s.rules.hoursError()
	}
	if s.rules.At(req.Date, req.Time).Before(s.now()) {
		return pastErr
	}
	return nil
}

// CreateBooking assigns the smallest free table that fits and confirms
// the booking in one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req BookingRequest) (*models.Booking, error) {
	if err := s.validateSlot(req, ErrBookingInPast); err != nil {
		return nil, err
	}

	var booking models.Booking
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		tables, err := s.finder.FindAvailableTables(tx, req.slot(), req.Guests, 0)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			return ErrNoTablesAvailable
		}

		table := tables[0]
		booking = models.Booking{
			UserID:         actor.UserID,
			TableID:        table.ID,
			BookingDate:    req.Date,
			BookingTime:    req.Time,
			NumberOfGuests: req.Guests,
			Notes:          req.Notes,
			Status:         models.StatusConfirmed,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return writeError(err)
		}
		booking.Table = &table
		return nil
	})
	if err != nil {
		return nil, s.fail("create booking", err)
	}

	s.logBooking(&booking, "Booking confirmed")
	s.notifier.Publish(hub.EventBookingCreated, &booking)
	return &booking, nil
}

// EditBooking moves an owned booking to a new slot or party size. The
// record keeps its id; its current table is kept when it still fits.
func (s *BookingService) EditBooking(ctx context.Context, actor Actor, id uint, req BookingRequest) (*models.Booking, error) {
	var booking *models.Booking
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		b, err := ownedBooking(tx, actor, id)
		if err != nil {
			return err
		}
		if !b.Status.Active() {
			return ErrBookingNotEditable
		}
		if err := s.validateSlot(req, ErrBookingInPast.withMessage("You cannot edit a booking to a past time.")); err != nil {
			return err
		}

		tables, err := s.finder.FindAvailableTables(tx, req.slot(), req.Guests, b.ID)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			return ErrNoTablesAvailable.withMessage("No tables available for your requested date, time, and number of guests for this edit.")
		}

		table := tables[0]
		for _, t := range tables {
			if t.ID == b.TableID {
				table = t
				break
			}
		}

		b.TableID = table.ID
		b.BookingDate = req.Date
		b.BookingTime = req.Time
		b.NumberOfGuests = req.Guests
		if req.Notes != nil {
			b.Notes = req.Notes
		}
		err = tx.Model(b).
			Select("table_id", "booking_date", "booking_time", "number_of_guests", "notes", "updated_at").
			Updates(b).Error
		if err != nil {
			return writeError(err)
		}
		b.Table = &table
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.fail("edit booking", err)
	}

	s.logBooking(booking, "Booking updated")
	s.notifier.Publish(hub.EventBookingUpdated, booking)
	return booking, nil
}

// CancelBooking soft-cancels an owned booking. Cancelling twice reports
// ErrAlreadyCancelled and changes nothing.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		b, err := ownedBooking(tx, actor, id)
		if err != nil {
			return err
		}
		if b.Status.Terminal() {
			if b.Status == models.StatusCancelled {
				return ErrAlreadyCancelled
			}
			return illegalTransition(b.Status, models.StatusCancelled)
		}
		if b.At(s.rules.location()).Before(s.now().Add(s.rules.CancellationLock)) {
			return s.rules.lockError()
		}

		if err := tx.Model(b).Update("status", string(models.StatusCancelled)).Error; err != nil {
			return err
		}
		b.Status = models.StatusCancelled
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.fail("cancel booking", err)
	}

	s.logBooking(booking, "Booking cancelled")
	s.notifier.Publish(hub.EventBookingCancelled, booking)
	return booking, nil
}

// UpdateStatus is the staff override. It bypasses ownership but not the
// transition table; keeping the same status only updates notes.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.BookingStatus, notes *string) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var booking models.Booking
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			return notFound(err, ErrBookingNotFound)
		}
		if status != booking.Status && !booking.Status.CanTransitionTo(status) {
			return illegalTransition(booking.Status, status)
		}

		updates := map[string]interface{}{"status": string(status)}
		if notes != nil {
			updates["notes"] = *notes
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("User").Preload("Table").First(&booking, id).Error
	})
	if err != nil {
		return nil, s.fail("update booking status", err)
	}

	s.logBooking(&booking, "Booking status updated by staff")
	s.notifier.Publish(hub.EventBookingStatus, &booking)
	return &booking, nil
}

// CreateStaffBooking records a booking on a specific table for any user.
// It starts pending unless a confirmed status is requested.
func (s *BookingService) CreateStaffBooking(ctx context.Context, actor Actor, req StaffBookingRequest) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if status != models.StatusPending && status != models.StatusConfirmed {
		return nil, ErrInvalidStatus.withMessage("New bookings must be pending or confirmed.")
	}
	if err := s.validateSlot(req.BookingRequest, ErrBookingInPast); err != nil {
		return nil, err
	}

	var booking models.Booking
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		var table models.Table
		if err := tx.First(&table, req.TableID).Error; err != nil {
			return notFound(err, ErrTableNotFound)
		}
		if table.Capacity < req.Guests {
			return ErrTableTooSmall
		}

		tables, err := s.finder.FindAvailableTables(tx, req.slot(), req.Guests, 0)
		if err != nil {
			return err
		}
		if !containsTable(tables, table.ID) {
			return ErrTableUnavailable.withMessage("Table %d is not available at the requested time.", table.Number)
		}

		booking = models.Booking{
			UserID:         user.ID,
			TableID:        table.ID,
			BookingDate:    req.Date,
			BookingTime:    req.Time,
			NumberOfGuests: req.Guests,
			Notes:          req.Notes,
			Status:         status,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return writeError(err)
		}
		booking.User = &user
		booking.Table = &table
		return nil
	})
	if err != nil {
		return nil, s.fail("create staff booking", err)
	}

	s.logBooking(&booking, "Booking created by staff")
	s.notifier.Publish(hub.EventBookingCreated, &booking)
	return &booking, nil
}

// GetBooking returns one booking with its table and owner. Non-staff
// callers only see their own bookings.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	q := s.store.WithContext(ctx).Preload("User").Preload("Table").Where("id = ?", id)
	if !actor.IsStaff {
		q = q.Where("user_id = ?", actor.UserID)
	}
	var booking models.Booking
	if err := q.First(&booking).Error; err != nil {
		return nil, s.fail("get booking", notFound(err, ErrBookingNotFound))
	}
	return &booking, nil
}

// CheckAvailability answers the public "which tables are free" question
// with the same conflict policy the booking flow uses. An empty slice is
// a normal answer.
func (s *BookingService) CheckAvailability(ctx context.Context, req BookingRequest) ([]models.Table, error) {
	if req.Guests < 1 {
		return nil, ErrInvalidGuestCount
	}
	if s.rules.At(req.Date, req.Time).Before(s.now().Add(-availabilityGrace)) {
		return nil, ErrBookingInPast.withMessage("You cannot check availability for a past date and time.")
	}
	if !s.rules.WithinHours(req.Time) {
		return nil, ErrOutsideOpeningHours.withMessage("Restaurant is open from %s to %s.",
			formatClock(s.rules.Opening), formatClock(s.rules.Closing))
	}

	tables, err := s.finder.FindAvailableTables(s.store.WithContext(ctx), req.slot(), req.Guests, 0)
	if err != nil {
		return nil, s.fail("check availability", err)
	}
	return tables, nil
}

// ownedBooking loads a booking only if actor owns it. Bookings of other
// users look missing rather than forbidden.
func ownedBooking(tx *gorm.DB, actor Actor, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := tx.Where("id = ? AND user_id = ?", id, actor.UserID).First(&b).Error; err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return &b, nil
}

func containsTable(tables []models.Table, id uint) bool {
	for _, t := range tables {
		if t.ID == id {
			return true
		}
	}
	return false
}

func illegalTransition(from, to models.BookingStatus) *BookingError {
	return ErrIllegalTransition.withMessage("A %s booking cannot be marked %s.", from.Label(), to.Label())
}

func notFound(err error, sentinel *BookingError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// writeError maps a slot unique violation to the retryable conflict.
func writeError(err error) error {
	if isDuplicateKey(err) {
		return ErrBookingConflict
	}
	return err
}

func (s *BookingService) fail(op string, err error) error {
	if be, ok := AsBookingError(err); ok {
		return be
	}
	utils.ErrorLogger.Printf("Error during %s: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *BookingService) logBooking(b *models.Booking, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"booking_id":   b.ID,
		"user_id":      b.UserID,
		"table_id":     b.TableID,
		"booking_date": models.FormatDate(b.BookingDate),
		"booking_time": b.BookingTime.String(),
		"status":       b.Status,
	}).Info(msg)
}
