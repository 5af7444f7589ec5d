package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return

	}

	c.JSON(statusCode, data)
}

func writeError(c *gin.Context, statusCode int, message string, details map[string][]string) {
	c.Abort()
	c.JSON(statusCode, errorResponse{
		Error:   message,
		Details: details,
	})
}
