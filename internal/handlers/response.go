package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelog/api/internal/validate"
)

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondValidation returns 422 with every failed field, not just the
// first.
func respondValidation(c *gin.Context, errs []validate.FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}
