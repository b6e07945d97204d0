package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parsePagination extracts from and size query parameters with defaults.
// Range checks stay in the services so every entry point shares them.
func parsePagination(c *gin.Context) (int, int, error) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		return 0, 0, errors.New("from query parameter must be an integer")
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		return 0, 0, errors.New("size query parameter must be an integer")
	}
	return from, size, nil
}
