package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareloop/service-share/internal/application"
	"github.com/shareloop/service-share/internal/middleware"
	"github.com/shareloop/service-share/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.IdentityMiddleware())
	{
		bookings.POST("", h.CreateBooking)
		bookings.PATCH("/:id", h.SetApproval)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("", h.ListByBooker)
		bookings.GET("/owner", h.ListByOwner)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// SetApproval handles PATCH /bookings/:id?approved={true|false}.
func (h *BookingHandler) SetApproval(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved query parameter must be true or false")
		return
	}

	result, err := h.service.SetApproval(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByBooker handles GET /bookings?state=&from=&size=.
func (h *BookingHandler) ListByBooker(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity"})
		return
	}

	from, size, err := parsePagination(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListByBooker(c.Request.Context(), userID, c.DefaultQuery("state", "ALL"), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByOwner handles GET /bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListByOwner(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity"})
		return
	}

	from, size, err := parsePagination(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListByOwner(c.Request.Context(), userID, c.DefaultQuery("state", "ALL"), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
