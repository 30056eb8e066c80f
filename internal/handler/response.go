// Package handler exposes the flatwise services over HTTP with gin.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/middleware"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
	"github.com/mmynk/flatwise/internal/settlement"
	"github.com/mmynk/flatwise/internal/storage"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, calculator.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidItem),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, settlement.ErrInsufficientUsers),
		errors.Is(err, settlement.ErrAlreadyItemUser),
		errors.Is(err, settlement.ErrNotItemUser),
		errors.Is(err, settlement.ErrAlreadyMember),
		errors.Is(err, settlement.ErrNotMember),
		errors.Is(err, settlement.ErrWrongFlat),
		errors.Is(err, settlement.ErrLastMember),
		errors.Is(err, storage.ErrEmailExists),
		errors.Is(err, storage.ErrHasLedger):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInactiveUser):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": ...} with the status for err and aborts.
// Internal errors are reported without detail.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// Success writes {"data": ...} with status.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// actor returns the authenticated user. Routes using it sit behind RequireAuth.
func actor(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// dateQuery parses ?date=YYYY-MM-DD. A missing date returns the zero time.
func dateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, badRequest("date: %v", err)
	}
	return d, nil
}

// paidQuery parses ?paid=true|false|all. A missing flag selects unpaid entries.
func paidQuery(c *gin.Context) (*bool, error) {
	raw := c.DefaultQuery("paid", "false")
	if raw == "all" {
		return nil, nil
	}
	paid, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest("paid must be true, false or all")
	}
	return &paid, nil
}

// pageQuery parses ?offset=&limit=.
func pageQuery(c *gin.Context) (int, int, error) {
	offset, err := intQuery(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("%s must be a non-negative integer", key)
	}
	return n, nil
}
