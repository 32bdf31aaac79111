package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/repository"
)

// EventHandler exposes staff CRUD for events plus the public listings.
// An event is the gender/team scope clinics hang off; deleting events is
// deliberately not offered, staff retire them by deactivating their
// clinics.
type EventHandler struct {
	Events     *repository.EventRepo
	Activities *repository.ActivityRepo
}

func NewEventHandler(e *repository.EventRepo, a *repository.ActivityRepo) *EventHandler {
	if e == nil || a == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: e, Activities: a}
}

type eventReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Gender      string `json:"gender"` // M | F | MIXED
	Team        string `json:"team"`
}

func (r *eventReq) normalize() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))
	r.Team = strings.TrimSpace(r.Team)
	if r.Title == "" {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "title required"}
	}
	switch r.Gender {
	case model.EventMale, model.EventFemale, model.EventMixed:
		return nil
	default:
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "gender must be M, F or MIXED"}
	}
}

// Create makes a new event (staff only).
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}
	ev := &model.Event{Title: req.Title, Description: req.Description, Gender: req.Gender, Team: req.Team}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.Create(ctx, ev); err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": ev})
}

// Update edits an event (staff only).  A gender change takes effect for
// future registrations only; existing sign-ups are not re-screened.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	ev.Title, ev.Description, ev.Gender, ev.Team = req.Title, req.Description, req.Gender, req.Team
	if err := h.Events.Update(ctx, ev); err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev})
}

// List is the public events listing, ordered by each event's next
// upcoming slot.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	events, err := h.Events.ListWithNextSlot(ctx, time.Now().UTC())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get returns one event with its clinic templates.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	clinics, err := h.Activities.ListByEvent(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev, "clinics": clinics})
}
