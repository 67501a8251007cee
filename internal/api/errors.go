package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/model"
)

var internalErrorBody = gin.H{
	"error":   "Internal server error",
	"message": "An unexpected error occurred",
}

const extractionFailedMessage = "Unable to fetch content from the provided URL"

// respondError maps typed errors to status codes. Untyped errors are logged
// by the request logger via c.Error and never echoed to the client.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *model.ValidationError
		authErr       *model.AuthError
		notFoundErr   *model.NotFoundError
		extractionErr *model.ExtractionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "message": validationErr.Message})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   authErr.Message,
			"message": "Please provide a valid authentication token",
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Analysis not found",
			"message": "The requested analysis does not exist or you do not have access to it",
		})
	case errors.As(err, &extractionErr):
		_ = c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Extraction failed",
			"message": extractionFailedMessage,
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, internalErrorBody)
	}
}
