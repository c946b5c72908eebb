package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/services"
	"github.com/yeremiapane/table-booking/utils"
)

// StaffController serves the /staff area. Routes sit behind
// middlewares.StaffOnly; the services check the flag again.
type StaffController struct {
	Bookings *services.BookingService
	Queries  *services.QueryService
}

func NewStaffController(bookings *services.BookingService, queries *services.QueryService) *StaffController {
	return &StaffController{Bookings: bookings, Queries: queries}
}

// Dashboard -> GET /staff/dashboard
func (sc *StaffController) Dashboard(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	stats, err := sc.Queries.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// ListBookings -> GET /staff/bookings?q=&status=&date=&page=
func (sc *StaffController) ListBookings(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	list, err := sc.Queries.ListBookings(c.Request.Context(), actor, services.BookingFilter{
		Query:  c.Query("q"),
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Page:   c.Query("page"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", list)
}

// GetBooking -> GET /staff/bookings/:id
func (sc *StaffController) GetBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := sc.Bookings.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

type staffBookingInput struct {
	bookingInput
	UserID  uint   `json:"user_id" binding:"required"`
	TableID uint   `json:"table_id" binding:"required"`
	Status  string `json:"status"`
}

// CreateBooking -> POST /staff/bookings
func (sc *StaffController) CreateBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in staffBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req, err := in.request()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var status models.BookingStatus
	if in.Status != "" {
		if status, ok = models.ParseBookingStatus(in.Status); !ok {
			respondServiceError(c, services.ErrInvalidStatus)
			return
		}
	}

	booking, err := sc.Bookings.CreateStaffBooking(c.Request.Context(), actor, services.StaffBookingRequest{
		BookingRequest: req,
		UserID:         in.UserID,
		TableID:        in.TableID,
		Status:         status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created successfully!", booking)
}

type statusInput struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// UpdateStatus -> PATCH /staff/bookings/:id
func (sc *StaffController) UpdateStatus(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	status, ok := models.ParseBookingStatus(in.Status)
	if !ok {
		respondServiceError(c, services.ErrInvalidStatus)
		return
	}

	booking, err := sc.Bookings.UpdateStatus(c.Request.Context(), actor, id, status, in.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking status updated successfully!", booking)
}
