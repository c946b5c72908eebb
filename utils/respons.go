package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondFailure sends a failed envelope that still carries details,
// e.g. the violated rule code or whether the caller may retry.
func RespondFailure(c *gin.Context, code int, message string, details interface{}) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: message,
		Data:    details,
	})
}
