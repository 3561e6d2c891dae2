package handlers

import (
	"net/http"
	"strings"
	"time"

	"catframe/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserKey      = "user"
	ctxRequestIDKey = "request_id"
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// requestID propagates X-Request-ID or assigns a fresh one.
func (h *Handler) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" || len(id) > maxRequestIDLen {
		id = uuid.NewString()
	}
	c.Set(ctxRequestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// accessLog writes one structured line per request.
func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.log.Infow("http_request",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", c.GetString(ctxRequestIDKey),
	)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireUser authenticates the bearer token and stores the user in the context.
func (h *Handler) requireUser(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		h.opts.Metrics.AuthEvent("authenticate", false)
		abortUnauthorized(c, "missing Authorization header")
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		h.opts.Metrics.AuthEvent("authenticate", false)
		abortUnauthorized(c, "invalid Authorization header format")
		return
	}

	user, err := h.services.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.opts.Metrics.AuthEvent("authenticate", false)
		h.writeServiceError(c, err, "auth_token_rejected")
		return
	}

	h.opts.Metrics.AuthEvent("authenticate", true)
	c.Set(ctxUserKey, user)
	c.Next()
}

// requireAdmin must run after requireUser.
func (h *Handler) requireAdmin(c *gin.Context) {
	if _, err := h.services.RequireAdmin(currentUser(c)); err != nil {
		h.writeServiceError(c, err, "auth_admin_required", "path", c.FullPath())
		return
	}
	c.Next()
}

// currentUser returns the authenticated user, or nil on public routes.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
