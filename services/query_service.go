package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/gorm"
)

type BookingFilter struct {
	Query  string `json:"q,omitempty"`
	Status string `json:"status,omitempty"`
	Date   string `json:"date,omitempty"`
	Page   string `json:"page,omitempty"`
}

type BookingList struct {
	utils.Page[models.Booking]
	// Filter echoes the filters actually applied; a malformed date is
	// cleared.
	Filter   BookingFilter `json:"filter"`
	Messages []string      `json:"messages,omitempty"`
}

type MyBookings struct {
	Upcoming []models.Booking `json:"upcoming_bookings"`
	Past     []models.Booking `json:"past_bookings"`
}

type DashboardStats struct {
	UpcomingActiveBookings int64 `json:"upcoming_active_bookings_count"`
	ConfirmedToday         int64 `json:"confirmed_today_count"`
	TotalTables            int64 `json:"total_tables"`
}

// QueryService is the read-only side over bookings.
type QueryService struct {
	store    *Store
	pageSize int
	location *time.Location

	Now func() time.Time
}

func NewQueryService(store *Store, pageSize int, location *time.Location) *QueryService {
	if pageSize <= 0 {
		pageSize = utils.DefaultPageSize
	}
	if location == nil {
		location = time.Local
	}
	return &QueryService{store: store, pageSize: pageSize, location: location, Now: time.Now}
}

func (s *QueryService) today() string {
	return models.FormatDate(models.DateOf(s.Now().In(s.location)))
}

// ListBookings is the staff booking list: newest slot first, filtered by
// free text (username, table number, notes), exact status and exact date.
func (s *QueryService) ListBookings(ctx context.Context, actor Actor, f BookingFilter) (*BookingList, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	db := s.store.WithContext(ctx)
	q := db.Model(&models.Booking{}).
		Joins("JOIN users ON users.id = bookings.user_id").
		Joins("JOIN tables ON tables.id = bookings.table_id")

	list := &BookingList{}
	if text := strings.TrimSpace(f.Query); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		q = q.Where(
			fmt.Sprintf("(LOWER(users.username) LIKE ? OR %s LIKE ? OR LOWER(bookings.notes) LIKE ?)", castText(db, "tables.number")),
			like, like, like,
		)
		list.Filter.Query = text
	}
	if f.Status != "" {
		q = q.Where("bookings.status = ?", f.Status)
		list.Filter.Status = f.Status
	}
	if f.Date != "" {
		d, err := models.ParseDate(f.Date)
		if err != nil {
			list.Messages = append(list.Messages, ErrInvalidDate.Message)
		} else {
			q = q.Where("bookings.booking_date = ?", d)
			list.Filter.Date = models.FormatDate(d)
		}
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	window := utils.ResolvePage(f.Page, s.pageSize, total)
	var bookings []models.Booking
	err := q.Select("bookings.*").
		Preload("User").
		Preload("Table").
		Order("bookings.booking_date DESC").
		Order("bookings.booking_time DESC").
		Order("bookings.id DESC").
		Limit(window.PageSize).
		Offset(window.Offset).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	list.Page = utils.NewPage(bookings, window, total)
	list.Filter.Page = fmt.Sprintf("%d", window.Page)
	return list, nil
}

// MyBookings splits the caller's bookings into upcoming (today onwards,
// soonest first) and past (most recent first).
func (s *QueryService) MyBookings(ctx context.Context, actor Actor) (*MyBookings, error) {
	today, err := models.ParseDate(s.today())
	if err != nil {
		return nil, err
	}

	db := s.store.WithContext(ctx)
	out := &MyBookings{Upcoming: []models.Booking{}, Past: []models.Booking{}}
	err = db.Preload("Table").
		Where("user_id = ? AND booking_date >= ?", actor.UserID, today).
		Order("booking_date ASC").Order("booking_time ASC").
		Find(&out.Upcoming).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming bookings: %w", err)
	}
	err = db.Preload("Table").
		Where("user_id = ? AND booking_date < ?", actor.UserID, today).
		Order("booking_date DESC").Order("booking_time DESC").
		Find(&out.Past).Error
	if err != nil {
		return nil, fmt.Errorf("past bookings: %w", err)
	}
	return out, nil
}

func (s *QueryService) Dashboard(ctx context.Context, actor Actor) (*DashboardStats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	today, err := models.ParseDate(s.today())
	if err != nil {
		return nil, err
	}

	db := s.store.WithContext(ctx)
	var stats DashboardStats
	if err := db.Model(&models.Booking{}).
		Where("booking_date >= ? AND status IN ?", today,
			[]string{string(models.StatusPending), string(models.StatusConfirmed)}).
		Count(&stats.UpcomingActiveBookings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Booking{}).
		Where("booking_date = ? AND status = ?", today, string(models.StatusConfirmed)).
		Count(&stats.ConfirmedToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Table{}).Count(&stats.TotalTables).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func castText(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "mysql" {
		return "CAST(" + column + " AS CHAR)"
	}
	return "CAST(" + column + " AS TEXT)"
}
