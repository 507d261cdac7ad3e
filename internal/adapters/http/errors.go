package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/gridops/internal/domain/models"
)

func problem(c *gin.Context, status int, detail string) ProblemDetails {
	return ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	}
}

func writeProblem(c *gin.Context, status int, detail string) {
	c.JSON(status, problem(c, status, detail))
}

func abortProblem(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, problem(c, status, detail))
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a problem response. Internal errors are recorded
// on the context for the request logger and never echoed to the client.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		writeProblem(c, status, "An unexpected error occurred")
		return
	}
	writeProblem(c, status, err.Error())
}

func bindError(c *gin.Context, err error) {
	writeProblem(c, http.StatusBadRequest, err.Error())
}

// pathID parses the :id path parameter, writing a 400 when it is malformed
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(c, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeProblem(c, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// queryTime parses an optional RFC 3339 query parameter
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeProblem(c, http.StatusBadRequest, name+" must be an RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}
