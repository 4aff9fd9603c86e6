package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "trading-coach/internal/errors"
)

// fail maps an error onto a status code and a {success:false} body.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := "Invalid input"
		if ve.Message == "field is required" {
			msg = "Missing required fields"
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg, "message": ve.Error()})
	case errors.Is(err, apperrors.ErrTradeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Trade not found"})
	case errors.Is(err, apperrors.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Session not found"})
	default:
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "message": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"success": false, "error": msg}
	if err != nil {
		body["message"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// bindOptionalJSON decodes the request body into v. An empty body is not an
// error.
func bindOptionalJSON(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError("", -1, key, raw, "must be a non-negative integer")
	}
	return v, nil
}
