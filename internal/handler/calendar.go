package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padelhq/club-reservation/internal/recurrence"
	"github.com/padelhq/club-reservation/internal/repository"
)

// CalendarHandler serves the public schedule view.
type CalendarHandler struct {
	Slots  *repository.SlotRepo
	Engine *recurrence.Engine
	Courts *repository.CourtRepo
}

func NewCalendarHandler(s *repository.SlotRepo, e *recurrence.Engine, courts *repository.CourtRepo) *CalendarHandler {
	if s == nil || e == nil || courts == nil {
		panic("nil dependency passed to NewCalendarHandler")
	}
	return &CalendarHandler{Slots: s, Engine: e, Courts: courts}
}

// Calendar lists slots in a date range.  ?from and ?to are YYYY-MM-DD in
// the venue timezone; the default is today through two weeks out, and the
// range is clamped to the materialization horizon (beyond it no slots
// exist yet anyway).
func (h *CalendarHandler) Calendar(c echo.Context) error {
	loc := h.Engine.Location
	now := time.Now().In(loc)
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 14)

	if s := c.QueryParam("from"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
		}
		to = t.AddDate(0, 0, 1) // inclusive date -> exclusive bound
	}
	if !to.After(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}
	if horizon := now.AddDate(0, 0, h.Engine.HorizonDays+1); to.After(horizon) {
		to = horizon
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	entries, err := h.Slots.Calendar(ctx, from.UTC(), to.UTC())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":  from.Format("2006-01-02"),
		"to":    to.AddDate(0, 0, -1).Format("2006-01-02"),
		"slots": entries,
	})
}

// ListCourts exposes the court fixture.
func (h *CalendarHandler) ListCourts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	courts, err := h.Courts.List(ctx)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"courts": courts})
}
