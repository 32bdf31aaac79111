package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/padelhq/club-reservation/internal/repository"
	"github.com/padelhq/club-reservation/internal/schedule"
)

// getMemberID extracts the member_id claim from echo.Context and converts
// it to uint64.  JWT numeric claims decode as float64; older tokens may
// carry strings.
func getMemberID(c echo.Context) (uint64, error) {
	v := c.Get("member_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid member_id in context")
}

// isStaff reports whether the authenticated caller holds the STAFF role.
func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "STAFF"
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// writeDomainErr maps domain sentinel errors onto HTTP responses.  Errors
// with no mapping are server faults and come back as a generic 500.
func writeDomainErr(c echo.Context, err error) error {
	var ve *schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	case errors.Is(err, repository.ErrActivityNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrMemberNotFound),
		errors.Is(err, schedule.ErrSlotNotFound),
		errors.Is(err, schedule.ErrNotRegistered):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrAlreadyRegistered),
		errors.Is(err, schedule.ErrSlotExists),
		errors.Is(err, schedule.ErrCourtsExhausted),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrGenderMismatch),
		errors.Is(err, schedule.ErrRegistrationClosed),
		errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("unhandled error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
