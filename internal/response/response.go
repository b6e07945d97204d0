package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shareloop/service-share/internal/domain"
)

// ErrorBody is the JSON envelope for error responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// Paginated writes a 200 response with a list payload and paging envelope.
func Paginated(c *gin.Context, items interface{}, total int64, from, size int) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"from":  from,
		"size":  size,
	})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// Error maps a service error onto an HTTP status. Unknown errors become an
// opaque 500 so internals never leak to clients.
func Error(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorBody{Error: err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorBody{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}
