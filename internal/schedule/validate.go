package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/recurrence"
)

// Operating window: slots must start and end between 06:00 and 22:00, on
// half-hour boundaries.
const (
	openMinute  = 6 * 60
	closeMinute = 22 * 60
)

// ValidateActivity checks an activity's fields before any mutation.  It
// returns a *ValidationError naming the offending field, or nil.
func ValidateActivity(a *model.Activity, perCourtMax int) error {
	switch a.Type {
	case model.TypePrivate, model.TypeCourt, model.TypeClinic:
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown activity type %q", a.Type)}
	}
	if a.Type == model.TypeClinic && a.EventID == nil {
		return &ValidationError{Field: "event_id", Reason: "clinics must belong to an event"}
	}
	if a.Type != model.TypeClinic && a.EventID != nil {
		return &ValidationError{Field: "event_id", Reason: "only clinics may belong to an event"}
	}
	if err := recurrence.CheckRule(a.Rule); err != nil {
		return &ValidationError{Field: "rule", Reason: err.Error()}
	}
	start, err := minuteOfDay(a.StartTime)
	if err != nil {
		return &ValidationError{Field: "start_time", Reason: err.Error()}
	}
	end, err := minuteOfDay(a.EndTime)
	if err != nil {
		return &ValidationError{Field: "end_time", Reason: err.Error()}
	}
	if start >= end {
		return &ValidationError{Field: "start_time", Reason: "must be before end_time"}
	}
	if start < openMinute || end > closeMinute {
		return &ValidationError{Field: "start_time", Reason: "outside the 06:00-22:00 operating window"}
	}
	if a.Capacity < 1 {
		return &ValidationError{Field: "capacity", Reason: "must be at least 1"}
	}
	if a.Type == model.TypePrivate && a.Capacity > perCourtMax {
		return &ValidationError{Field: "capacity", Reason: fmt.Sprintf("private lessons fit on one court (max %d)", perCourtMax)}
	}
	return nil
}

// minuteOfDay parses "HH:MM" and enforces the half-hour grid.
func minuteOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not a HH:MM time", hhmm)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q is not a HH:MM time", hhmm)
	}
	if m%30 != 0 {
		return 0, fmt.Errorf("%q is not on a half-hour boundary", hhmm)
	}
	return h*60 + m, nil
}
