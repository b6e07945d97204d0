package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/application"
	"github.com/shareloop/service-share/internal/response"
)

// AdminBookingHandler handles admin HTTP requests for booking oversight.
type AdminBookingHandler struct {
	service *application.BookingService
	logger  *zap.Logger
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService, logger *zap.Logger) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, logger: logger}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/bookings/export", h.ExportBookings)
	}
}

// ListBookings handles GET /admin/bookings?from=&size=.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	from, size, err := parsePagination(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, from, size)
}

// BookingStats handles GET /admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ExportBookings handles GET /admin/bookings/export, streaming an xlsx
// workbook of every booking.
func (h *AdminBookingHandler) ExportBookings(c *gin.Context) {
	workbook, err := h.service.ExportWorkbook(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() { _ = workbook.Close() }()

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("failed to stream export", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}
