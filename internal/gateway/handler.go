package gateway

import (
	"encoding/json"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shareloop/service-share/internal/domain/booking"
	"github.com/shareloop/service-share/internal/middleware"
	"github.com/shareloop/service-share/internal/response"
)

// Handler validates incoming requests at the edge before forwarding them to
// the share service. Rejecting malformed payloads here keeps junk traffic off
// the service and gives clients earlier feedback; the service still enforces
// every rule itself.
type Handler struct {
	client *Client
}

// NewHandler creates a gateway Handler forwarding through the given client.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes wires validating routes for every public endpoint. Anything
// not matched is forwarded untouched.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/bookings", h.requireIdentity, h.createBooking)
	r.PATCH("/bookings/:id", h.requireIdentity, h.setApproval)
	r.GET("/bookings/:id", h.requireIdentity, h.forward)
	r.GET("/bookings", h.requireIdentity, h.listBookings)
	r.GET("/bookings/owner", h.requireIdentity, h.listBookings)

	r.POST("/items", h.requireIdentity, h.createItem)
	r.PATCH("/items/:id", h.requireIdentity, h.forwardJSON)
	r.GET("/items/:id", h.requireIdentity, h.forward)
	r.GET("/items", h.requireIdentity, h.checkPagination)
	r.GET("/items/search", h.requireIdentity, h.checkPagination)
	r.POST("/items/:id/comment", h.requireIdentity, h.addComment)

	r.POST("/users", h.createUser)
	r.GET("/users", h.forward)
	r.GET("/users/:id", h.forward)
	r.PATCH("/users/:id", h.updateUser)
	r.DELETE("/users/:id", h.forward)

	r.POST("/requests", h.requireIdentity, h.createRequest)
	r.GET("/requests", h.requireIdentity, h.forward)
	r.GET("/requests/all", h.requireIdentity, h.checkPagination)
	r.GET("/requests/:id", h.requireIdentity, h.forward)

	r.NoRoute(h.forward)
}

func (h *Handler) requireIdentity(c *gin.Context) {
	raw := c.GetHeader(middleware.UserIDHeader)
	if raw == "" {
		response.BadRequest(c, "missing "+middleware.UserIDHeader+" header")
		c.Abort()
		return
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+middleware.UserIDHeader+" header")
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) forward(c *gin.Context) {
	h.client.Forward(c, nil)
}

// forwardJSON relays the request with its body, without payload checks.
func (h *Handler) forwardJSON(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return nil, false
	}
	return body, true
}

func (h *Handler) createBooking(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		ItemID int64      `json:"itemId"`
		Start  *time.Time `json:"start"`
		End    *time.Time `json:"end"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if payload.ItemID <= 0 {
		response.BadRequest(c, "itemId is required")
		return
	}
	if payload.Start == nil || payload.End == nil {
		response.BadRequest(c, "start and end are required")
		return
	}
	now := time.Now()
	switch {
	case payload.Start.After(*payload.End):
		response.BadRequest(c, "booking start is after its end")
		return
	case payload.Start.Equal(*payload.End):
		response.BadRequest(c, "booking start equals its end")
		return
	case payload.Start.Before(now):
		response.BadRequest(c, "booking start is in the past")
		return
	case payload.End.Before(now):
		response.BadRequest(c, "booking end is in the past")
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) setApproval(c *gin.Context) {
	if _, err := strconv.ParseBool(c.Query("approved")); err != nil {
		response.BadRequest(c, "approved query parameter must be true or false")
		return
	}
	h.client.Forward(c, nil)
}

func (h *Handler) listBookings(c *gin.Context) {
	if state := c.Query("state"); state != "" {
		if _, err := booking.ParseState(state); err != nil {
			response.Error(c, err)
			return
		}
	}
	if !h.paginationOK(c) {
		return
	}
	h.client.Forward(c, nil)
}

func (h *Handler) checkPagination(c *gin.Context) {
	if !h.paginationOK(c) {
		return
	}
	h.client.Forward(c, nil)
}

func (h *Handler) paginationOK(c *gin.Context) bool {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil || from < 0 {
		response.BadRequest(c, "from must be a non-negative integer")
		return false
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		response.BadRequest(c, "size must be a positive integer")
		return false
	}
	return true
}

func (h *Handler) createItem(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Available   *bool   `json:"available"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		response.BadRequest(c, "item name must not be empty")
		return
	}
	if payload.Description == nil || strings.TrimSpace(*payload.Description) == "" {
		response.BadRequest(c, "item description must not be empty")
		return
	}
	if payload.Available == nil {
		response.BadRequest(c, "available is required")
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) addComment(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		response.BadRequest(c, "comment text must not be empty")
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) createUser(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		response.BadRequest(c, "user name must not be empty")
		return
	}
	if !emailOK(payload.Email) {
		response.BadRequest(c, "invalid email address")
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) updateUser(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		Email *string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if payload.Email != nil && !emailOK(*payload.Email) {
		response.BadRequest(c, "invalid email address")
		return
	}
	h.client.Forward(c, body)
}

func (h *Handler) createRequest(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	var payload struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		response.BadRequest(c, "request description must not be empty")
		return
	}
	h.client.Forward(c, body)
}

func emailOK(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	return err == nil && addr.Address == strings.TrimSpace(email)
}
