package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/services"
	"github.com/yeremiapane/table-booking/utils"
)

type bookingInput struct {
	BookingDate    string  `json:"booking_date" binding:"required"`
	BookingTime    string  `json:"booking_time" binding:"required"`
	NumberOfGuests int     `json:"number_of_guests"`
	Notes          *string `json:"notes"`
}

func (in bookingInput) request() (services.BookingRequest, error) {
	return services.ParseBookingRequest(in.BookingDate, in.BookingTime, in.NumberOfGuests, in.Notes)
}

type BookingController struct {
	Bookings *services.BookingService
	Queries  *services.QueryService
}

func NewBookingController(bookings *services.BookingService, queries *services.QueryService) *BookingController {
	return &BookingController{Bookings: bookings, Queries: queries}
}

// CreateBooking -> POST /bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req, err := in.request()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	booking, err := bc.Bookings.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated,
		fmt.Sprintf("Your booking for Table %d has been confirmed!", booking.Table.Number), booking)
}

// MyBookings -> GET /bookings
func (bc *BookingController) MyBookings(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	out, err := bc.Queries.MyBookings(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your bookings", out)
}

// GetBooking -> GET /bookings/:id
func (bc *BookingController) GetBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	// Owners only, staff included: the staff view lives under /staff.
	actor.IsStaff = false
	booking, err := bc.Bookings.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// EditBooking -> PUT /bookings/:id
func (bc *BookingController) EditBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req, err := in.request()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	booking, err := bc.Bookings.EditBooking(c.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK,
		fmt.Sprintf("Your booking for Table %d has been updated successfully!", booking.Table.Number), booking)
}

// CancelBooking -> POST /bookings/:id/cancel
func (bc *BookingController) CancelBooking(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.CancelBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your booking has been successfully cancelled.", booking)
}

// CheckAvailability -> POST /availability (public)
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	var in bookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req, err := in.request()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tables, err := bc.Bookings.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	msg := fmt.Sprintf("Found %d table(s) available.", len(tables))
	if len(tables) == 0 {
		msg = "No tables available for the selected criteria. Please try a different date, time, or number of guests."
	}
	utils.RespondJSON(c, http.StatusOK, msg, gin.H{"available_tables": tables})
}
