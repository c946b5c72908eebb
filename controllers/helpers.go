package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/middlewares"
	"github.com/yeremiapane/table-booking/services"
	"github.com/yeremiapane/table-booking/utils"
)

var errInternal = errors.New("Something went wrong. Please try again later.")

// respondServiceError maps a service error onto a status code. Anything
// that is not a BookingError is logged and hidden behind a generic 500.
func respondServiceError(c *gin.Context, err error) {
	be, ok := services.AsBookingError(err)
	if !ok {
		_ = c.Error(err)
		utils.ErrorLogger.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
		return
	}

	details := gin.H{"code": be.Code}
	if be.Field != "" {
		details["field"] = be.Field
	}
	if be.Retryable() {
		details["retryable"] = true
	}
	utils.RespondFailure(c, statusFor(be.Kind), be.Message, details)
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindRejected:
		return http.StatusUnprocessableEntity
	case services.KindConflict:
		return http.StatusConflict
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func actorOf(c *gin.Context) (services.Actor, bool) {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return services.Actor{}, false
	}
	return actor, true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}
