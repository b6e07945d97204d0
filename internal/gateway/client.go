package gateway

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareloop/service-share/internal/middleware"
)

// Client forwards validated requests to the share service and relays the
// response untouched.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Forward proxies the current request to the share service, preserving the
// method, path, query, body and identity header.
func (cl *Client) Forward(c *gin.Context, body []byte) {
	url := cl.baseURL + c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		url += "?" + raw
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, reader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID := c.GetHeader(middleware.UserIDHeader); userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		cl.logger.Error("upstream request failed", zap.String("url", url), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	c.Status(resp.StatusCode)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		c.Header("Content-Type", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		c.Header("Content-Disposition", cd)
	}
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		cl.logger.Error("failed to relay upstream response", zap.Error(err))
	}
}
