package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/table-booking/database"
	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/middlewares"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/services"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	users  *services.UserService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

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

	store := services.NewStore(db)
	h := hub.New()
	rules := services.DefaultRules()
	rules.Location = time.UTC
	bookings := services.NewBookingService(store, services.NewResolver(services.DefaultConflictPolicy), rules, h)
	bookings.Now = func() time.Time { return testNow }
	queries := services.NewQueryService(store, 10, time.UTC)
	queries.Now = func() time.Time { return testNow }
	users := services.NewUserService(store, h)
	users.Cost = 4

	bookingCtrl := NewBookingController(bookings, queries)
	staffCtrl := NewStaffController(bookings, queries)
	tableCtrl := NewTableController(services.NewTableService(store, h))
	userCtrl := NewUserController(users)

	r := gin.New()
	r.POST("/register", userCtrl.Register)
	r.POST("/login", userCtrl.Login)
	r.POST("/availability", bookingCtrl.CheckAvailability)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/bookings", bookingCtrl.MyBookings)
	auth.POST("/bookings", bookingCtrl.CreateBooking)
	auth.GET("/bookings/:id", bookingCtrl.GetBooking)
	auth.PUT("/bookings/:id", bookingCtrl.EditBooking)
	auth.POST("/bookings/:id/cancel", bookingCtrl.CancelBooking)

	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.StaffOnly())
	staff.GET("/dashboard", staffCtrl.Dashboard)
	staff.GET("/bookings", staffCtrl.ListBookings)
	staff.POST("/bookings", staffCtrl.CreateBooking)
	staff.GET("/bookings/:id", staffCtrl.GetBooking)
	staff.PATCH("/bookings/:id", staffCtrl.UpdateStatus)
	staff.GET("/tables", tableCtrl.GetAllTables)
	staff.POST("/tables", tableCtrl.CreateTable)
	staff.PUT("/tables/:id", tableCtrl.UpdateTable)
	staff.DELETE("/tables/:id", tableCtrl.DeleteTable)
	staff.DELETE("/users/:id", userCtrl.DeleteUser)

	return &testServer{db: db, router: r, users: users}
}

func (s *testServer) token(t *testing.T, name string, staff bool) (string, models.User) {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), services.Registration{Username: name, Password: "pw"}, staff)
	require.NoError(t, err)
	token, err := utils.GenerateToken(u.ID, u.IsStaff)
	require.NoError(t, err)
	return token, *u
}

func (s *testServer) table(t *testing.T, number, capacity int) models.Table {
	t.Helper()
	tb := models.Table{Number: number, Capacity: capacity}
	require.NoError(t, s.db.Create(&tb).Error)
	return tb
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func booking(date, clock string, guests int) gin.H {
	return gin.H{"booking_date": date, "booking_time": clock, "number_of_guests": guests}
}

func TestCreateBookingEndpoint(t *testing.T) {
	s := setupTestServer(t)
	token, _ := s.token(t, "alice", false)
	s.table(t, 4, 2)

	code, env := s.do(t, http.MethodPost, "/bookings", token, booking("2025-06-11", "19:00", 2))
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Status)
	assert.Equal(t, "Your booking for Table 4 has been confirmed!", env.Message)

	data := decode(t, env.Data)
	assert.Equal(t, "confirmed", data["status"])
	assert.Equal(t, "19:00:00", data["booking_time"])

	code, env = s.do(t, http.MethodPost, "/bookings", token, booking("2025-06-11", "19:30", 2))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, env.Status)
	assert.Equal(t, "No tables available for your requested date, time, and number of guests.", env.Message)
	assert.Equal(t, "no_tables_available", decode(t, env.Data)["code"])
}

func TestCreateBookingValidationEndpoint(t *testing.T) {
	s := setupTestServer(t)
	token, _ := s.token(t, "alice", false)
	s.table(t, 1, 4)

	code, env := s.do(t, http.MethodPost, "/bookings", token, booking("2025-06-11", "23:00", 2))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Bookings can only be made between 9:00 AM and 10:00 PM.", env.Message)
	assert.Equal(t, "booking_time", decode(t, env.Data)["field"])

	code, env = s.do(t, http.MethodPost, "/bookings", token, booking("2025-13-40", "19:00", 2))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid date format. Please use YYYY-MM-DD.", env.Message)

	code, _ = s.do(t, http.MethodPost, "/bookings", token, gin.H{"number_of_guests": 2})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/bookings", "", booking("2025-06-11", "19:00", 2))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestEditAndCancelEndpoints(t *testing.T) {
	s := setupTestServer(t)
	alice, _ := s.token(t, "alice", false)
	bob, _ := s.token(t, "bob", false)
	s.table(t, 1, 4)

	_, env := s.do(t, http.MethodPost, "/bookings", alice, booking("2025-06-11", "19:00", 2))
	id := int(decode(t, env.Data)["id"].(float64))
	path := fmt.Sprintf("/bookings/%d", id)

	code, env := s.do(t, http.MethodPut, path, alice, booking("2025-06-11", "20:00", 3))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Your booking for Table 1 has been updated successfully!", env.Message)
	assert.Equal(t, float64(id), decode(t, env.Data)["id"])

	code, _ = s.do(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPost, path+"/cancel", bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodPost, path+"/cancel", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Your booking has been successfully cancelled.", env.Message)

	code, env = s.do(t, http.MethodPost, path+"/cancel", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "This booking is already cancelled.", env.Message)

	code, _ = s.do(t, http.MethodGet, "/bookings/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMyBookingsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	alice, _ := s.token(t, "alice", false)
	s.table(t, 1, 4)
	s.do(t, http.MethodPost, "/bookings", alice, booking("2025-06-11", "19:00", 2))

	code, env := s.do(t, http.MethodGet, "/bookings", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	data := decode(t, env.Data)
	assert.Len(t, data["upcoming_bookings"], 1)
	assert.Len(t, data["past_bookings"], 0)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.table(t, 1, 2)
	s.table(t, 2, 4)

	code, env := s.do(t, http.MethodPost, "/availability", "", booking("2025-06-11", "19:00", 2))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Found 2 table(s) available.", env.Message)

	code, env = s.do(t, http.MethodPost, "/availability", "", booking("2025-06-11", "19:00", 10))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No tables available for the selected criteria. Please try a different date, time, or number of guests.", env.Message)

	code, env = s.do(t, http.MethodPost, "/availability", "", booking("2025-06-09", "19:00", 2))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You cannot check availability for a past date and time.", env.Message)
}

func TestStaffEndpointsRequireStaff(t *testing.T) {
	s := setupTestServer(t)
	alice, _ := s.token(t, "alice", false)

	for _, path := range []string{"/staff/dashboard", "/staff/bookings", "/staff/tables"} {
		code, _ := s.do(t, http.MethodGet, path, alice, nil)
		assert.Equal(t, http.StatusForbidden, code, path)
	}
}

func TestStaffBookingFlow(t *testing.T) {
	s := setupTestServer(t)
	staff, _ := s.token(t, "host", true)
	_, alice := s.token(t, "alice", false)
	tb := s.table(t, 3, 4)

	code, env := s.do(t, http.MethodPost, "/staff/bookings", staff, gin.H{
		"booking_date":     "2025-06-11",
		"booking_time":     "18:00",
		"number_of_guests": 4,
		"user_id":          alice.ID,
		"table_id":         tb.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	created := decode(t, env.Data)
	assert.Equal(t, "pending", created["status"])
	path := fmt.Sprintf("/staff/bookings/%d", int(created["id"].(float64)))

	code, env = s.do(t, http.MethodPatch, path, staff, gin.H{"status": "confirmed", "notes": "window"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Booking status updated successfully!", env.Message)
	assert.Equal(t, "window", decode(t, env.Data)["notes"])

	code, env = s.do(t, http.MethodPatch, path, staff, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "illegal_transition", decode(t, env.Data)["code"])

	code, _ = s.do(t, http.MethodPatch, path, staff, gin.H{"status": "seated"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodGet, path, staff, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", decode(t, env.Data)["user"].(map[string]interface{})["username"])

	code, env = s.do(t, http.MethodGet, "/staff/bookings?q=alice&date=nope", staff, nil)
	assert.Equal(t, http.StatusOK, code)
	list := decode(t, env.Data)
	assert.Equal(t, float64(1), list["total"])
	assert.Len(t, list["messages"], 1)

	code, env = s.do(t, http.MethodGet, "/staff/dashboard", staff, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), decode(t, env.Data)["upcoming_active_bookings_count"])
}

func TestTableEndpoints(t *testing.T) {
	s := setupTestServer(t)
	staff, _ := s.token(t, "host", true)
	alice, _ := s.token(t, "alice", false)

	code, env := s.do(t, http.MethodPost, "/staff/tables", staff, gin.H{"number": 7, "capacity": 4})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Table 7 added successfully!", env.Message)
	id := int(decode(t, env.Data)["id"].(float64))

	code, _ = s.do(t, http.MethodPost, "/staff/tables", staff, gin.H{"number": 7, "capacity": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = s.do(t, http.MethodPut, fmt.Sprintf("/staff/tables/%d", id), staff, gin.H{"number": 8, "capacity": 6})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table 8 updated successfully!", env.Message)

	s.do(t, http.MethodPost, "/bookings", alice, booking("2025-06-11", "19:00", 2))
	code, env = s.do(t, http.MethodDelete, fmt.Sprintf("/staff/tables/%d", id), staff, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "This table cannot be deleted as it has active bookings.", env.Message)

	other := s.table(t, 9, 2)
	code, env = s.do(t, http.MethodDelete, fmt.Sprintf("/staff/tables/%d", other.ID), staff, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Table 9 deleted successfully!", env.Message)

	code, env = s.do(t, http.MethodGet, "/staff/tables", staff, nil)
	assert.Equal(t, http.StatusOK, code)
	var tables []models.Table
	require.NoError(t, json.Unmarshal(env.Data, &tables))
	assert.Len(t, tables, 1)
}

func TestAuthEndpoints(t *testing.T) {
	s := setupTestServer(t)

	code, env := s.do(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, decode(t, env.Data)["token"])

	code, _ = s.do(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	token := decode(t, env.Data)["token"].(string)

	code, env = s.do(t, http.MethodGet, "/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)
	profile := decode(t, env.Data)
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password")
}

func TestDeleteUserEndpoint(t *testing.T) {
	s := setupTestServer(t)
	staff, _ := s.token(t, "host", true)
	alice, aliceUser := s.token(t, "alice", false)
	s.table(t, 1, 4)
	s.do(t, http.MethodPost, "/bookings", alice, booking("2025-06-11", "19:00", 2))

	code, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/staff/users/%d", aliceUser.ID), staff, nil)
	assert.Equal(t, http.StatusOK, code)

	var count int64
	s.db.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
}
