package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-booking/utils"
)

// StaffOnly must run after AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}
		if !actor.IsStaff {
			utils.RespondError(c, http.StatusForbidden, errors.New("You are not authorized to view this page."))
			c.Abort()
			return
		}
		c.Next()
	}
}
