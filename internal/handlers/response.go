package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catframe/internal/repository"
	"catframe/internal/service"
	"catframe/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	errInternal         = "internal server error"
	errValidationFailed = "validation failed"
	errInvalidBodyPref  = "invalid body: "
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is the 422 body listing each failed field.
type ValidationErrorResponse struct {
	Error      string            `json:"error"`
	Violations validation.Errors `json:"violations"`
}

// errorMapping binds a service error to its HTTP status and public message.
type errorMapping struct {
	target  error
	status  int
	message string
}

// serviceErrors is checked in order; specific errors precede the generic ones they wrap.
var serviceErrors = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "incorrect username or password"},
	{service.ErrUsernameTaken, http.StatusConflict, "username already registered"},
	{repository.ErrConflict, http.StatusConflict, "username already registered"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "could not validate credentials"},
	{service.ErrForbidden, http.StatusForbidden, "insufficient permissions"},
	{service.ErrInvalidOrExpiredToken, http.StatusBadRequest, "invalid or expired token"},
	{service.ErrMovieNotFound, http.StatusNotFound, "movie not found"},
	{service.ErrCommentNotFound, http.StatusNotFound, "comment not found for this movie"},
	{service.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{service.ErrNotFound, http.StatusNotFound, "not found"},
	{service.ErrSelfAdminToggle, http.StatusBadRequest, "you cannot change your own admin status"},
	{service.ErrSelfDelete, http.StatusBadRequest, "you cannot delete your own account"},
	{service.ErrInvalidOperation, http.StatusBadRequest, "invalid operation"},
}

// writeServiceError maps err to a JSON error response. Unknown errors become a
// 500 with a generic message; the cause is only logged.
func (h *Handler) writeServiceError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	if ve, ok := validation.AsErrors(err); ok {
		h.log.Infow(logKey, append([]interface{}{"err", err}, kv...)...)
		writeValidationErrors(c, ve)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			h.log.Infow(logKey, append([]interface{}{"err", err, "status", m.status}, kv...)...)
			if m.status == http.StatusUnauthorized {
				c.Header("WWW-Authenticate", "Bearer")
			}
			c.AbortWithStatusJSON(m.status, ErrorResponse{Error: m.message})
			return
		}
	}

	h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.AbortWithStatusJSON(httpCode, ErrorResponse{Error: userMsg})
}

func writeValidationErrors(c *gin.Context, ve validation.Errors) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Error:      errValidationFailed,
		Violations: ve,
	})
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// pathID parses a positive integer path parameter, answering 422 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeValidationErrors(c, validation.Errors{{Field: name, Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter into dst.
func queryInt(c *gin.Context, name string, dst *int, violations *validation.Errors) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*violations = append(*violations, validation.Violation{Field: name, Message: "must be an integer"})
		return
	}
	*dst = v
}

// queryIntPtr is queryInt for optional filters where absence matters.
func queryIntPtr(c *gin.Context, name string, violations *validation.Errors) *int {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*violations = append(*violations, validation.Violation{Field: name, Message: "must be an integer"})
		return nil
	}
	return &v
}

// pageParams reads skip and limit.
func pageParams(c *gin.Context) (skip, limit int, ok bool) {
	var violations validation.Errors
	queryInt(c, "skip", &skip, &violations)
	queryInt(c, "limit", &limit, &violations)
	if len(violations) > 0 {
		writeValidationErrors(c, violations)
		return 0, 0, false
	}
	return skip, limit, true
}
