package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-booking/database"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// testNow is a Tuesday morning; every test runs with this clock.
var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(event string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fixture struct {
	db       *gorm.DB
	store    *Store
	bookings *BookingService
	queries  *QueryService
	tables   *TableService
	users    *UserService
	events   *recorder
}

func testRules() Rules {
	r := DefaultRules()
	r.Location = time.UTC
	return r
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	store := NewStore(db)
	events := &recorder{}

	bookings := NewBookingService(store, NewResolver(DefaultConflictPolicy), testRules(), events)
	bookings.Now = func() time.Time { return testNow }
	queries := NewQueryService(store, 10, time.UTC)
	queries.Now = func() time.Time { return testNow }
	users := NewUserService(store, events)
	users.Cost = bcrypt.MinCost

	return &fixture{
		db:       db,
		store:    store,
		bookings: bookings,
		queries:  queries,
		tables:   NewTableService(store, events),
		users:    users,
		events:   events,
	}
}

func (f *fixture) user(t *testing.T, name string, staff bool) models.User {
	t.Helper()
	u := models.User{Username: name, Password: "x", IsStaff: staff}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) table(t *testing.T, number, capacity int) models.Table {
	t.Helper()
	tb := models.Table{Number: number, Capacity: capacity}
	require.NoError(t, f.db.Create(&tb).Error)
	return tb
}

// booking inserts a row directly, skipping every rule.
func (f *fixture) booking(t *testing.T, u models.User, tb models.Table, date, clock string, guests int, status models.BookingStatus) models.Booking {
	t.Helper()
	d, err := models.ParseDate(date)
	require.NoError(t, err)
	c, err := models.ParseClock(clock)
	require.NoError(t, err)
	b := models.Booking{
		UserID:         u.ID,
		TableID:        tb.ID,
		BookingDate:    d,
		BookingTime:    c,
		NumberOfGuests: guests,
		Status:         status,
	}
	require.NoError(t, f.db.Omit(clause.Associations).Create(&b).Error)
	return b
}

func (f *fixture) reload(t *testing.T, id uint) models.Booking {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.First(&b, id).Error)
	return b
}

func request(t *testing.T, date, clock string, guests int) BookingRequest {
	t.Helper()
	req, err := ParseBookingRequest(date, clock, guests, nil)
	require.NoError(t, err)
	return req
}

func slot(t *testing.T, date, clock string) Slot {
	t.Helper()
	return request(t, date, clock, 1).slot()
}

func actorOf(u models.User) Actor {
	return Actor{UserID: u.ID, IsStaff: u.IsStaff}
}

func tableNumbers(tables []models.Table) []int {
	out := make([]int, 0, len(tables))
	for _, tb := range tables {
		out = append(out, tb.Number)
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
