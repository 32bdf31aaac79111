package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/padelhq/club-reservation/internal/config"
	"github.com/padelhq/club-reservation/internal/middleware"
	"github.com/padelhq/club-reservation/internal/model"
	"github.com/padelhq/club-reservation/internal/queue"
	"github.com/padelhq/club-reservation/internal/repository"
	"github.com/padelhq/club-reservation/internal/schedule"
	queue_publisher "github.com/padelhq/club-reservation/internal/service"
)

// ActivityHandler exposes staff CRUD for activity templates.  Every write
// runs the schedule reconciler so the materialized slots always track the
// template, and reports partial allocation failures back to the caller.
type ActivityHandler struct {
	Activities *repository.ActivityRepo
	Events     *repository.EventRepo
	Slots      *repository.SlotRepo
	Rec        *schedule.Reconciler
	CacheCfg   config.CacheConfig
	RDB        *redis.Client
}

func NewActivityHandler(a *repository.ActivityRepo, e *repository.EventRepo, s *repository.SlotRepo,
	rec *schedule.Reconciler, cacheCfg config.CacheConfig, rdb *redis.Client) *ActivityHandler {
	if a == nil || e == nil || s == nil || rec == nil {
		panic("nil dependency passed to NewActivityHandler")
	}
	return &ActivityHandler{Activities: a, Events: e, Slots: s, Rec: rec, CacheCfg: cacheCfg, RDB: rdb}
}

type activityReq struct {
	Type      string  `json:"type"` // private | court | clinic
	EventID   *uint64 `json:"event_id"`
	Title     string  `json:"title"`
	Rule      string  `json:"rule"` // RRULE/RDATE/EXDATE lines
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Capacity  int     `json:"capacity"`
	IsActive  *bool   `json:"is_active"`
}

type activityResp struct {
	Activity *model.Activity  `json:"activity"`
	Report   *schedule.Report `json:"report,omitempty"`
}

// Create persists a new activity template and materializes its slots.
// Occurrences the court pool cannot host appear in the report's failures;
// the rest of the schedule stands.
func (h *ActivityHandler) Create(c echo.Context) error {
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	act := &model.Activity{
		Type:      strings.ToLower(strings.TrimSpace(req.Type)),
		EventID:   req.EventID,
		Title:     strings.TrimSpace(req.Title),
		Rule:      strings.TrimSpace(req.Rule),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
		Capacity:  req.Capacity,
		IsActive:  true,
	}
	if req.IsActive != nil {
		act.IsActive = *req.IsActive
	}
	if err := schedule.ValidateActivity(act, h.Rec.Alloc.PerCourtMax); err != nil {
		return writeDomainErr(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if act.EventID != nil {
		if _, err := h.Events.GetByID(ctx, *act.EventID); err != nil {
			return writeDomainErr(c, err)
		}
	}
	if err := h.Activities.Create(ctx, act); err != nil {
		return writeDomainErr(c, err)
	}

	rep, err := h.Rec.Materialize(ctx, act)
	if err != nil && !errors.Is(err, schedule.ErrCourtsExhausted) {
		return writeDomainErr(c, err)
	}
	h.afterScheduleChange(act, rep)
	return c.JSON(http.StatusCreated, activityResp{Activity: act, Report: rep})
}

// Update edits a template and reconciles its future slots against the
// previous state.  Elapsed slots are history and stay untouched.
func (h *ActivityHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	act, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	old := schedule.SnapshotOf(act)

	// Type and event binding are fixed at creation; only schedule-bearing
	// fields and the title may change.
	if req.Title != "" {
		act.Title = strings.TrimSpace(req.Title)
	}
	if req.Rule != "" {
		act.Rule = strings.TrimSpace(req.Rule)
	}
	if req.StartTime != "" {
		act.StartTime = strings.TrimSpace(req.StartTime)
	}
	if req.EndTime != "" {
		act.EndTime = strings.TrimSpace(req.EndTime)
	}
	if req.Capacity > 0 {
		act.Capacity = req.Capacity
	}
	if req.IsActive != nil {
		act.IsActive = *req.IsActive
	}
	if err := schedule.ValidateActivity(act, h.Rec.Alloc.PerCourtMax); err != nil {
		return writeDomainErr(c, err)
	}
	if err := h.Activities.Update(ctx, act); err != nil {
		return writeDomainErr(c, err)
	}

	rep, err := h.Rec.Reconcile(ctx, act, old)
	if err != nil && !errors.Is(err, schedule.ErrCourtsExhausted) {
		return writeDomainErr(c, err)
	}
	h.afterScheduleChange(act, rep)
	return c.JSON(http.StatusOK, activityResp{Activity: act, Report: rep})
}

// Delete removes a template; its slots and their registrations cascade.
func (h *ActivityHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	act, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	if err := h.Activities.Delete(ctx, id); err != nil {
		return writeDomainErr(c, err)
	}
	h.afterScheduleChange(act, nil)
	return c.NoContent(http.StatusNoContent)
}

// List returns activity templates.  ?active=true narrows to active ones.
func (h *ActivityHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	acts, err := h.Activities.List(ctx, c.QueryParam("active") == "true")
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"activities": acts})
}

// Get returns one template with its upcoming slots.
func (h *ActivityHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	act, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		return writeDomainErr(c, err)
	}
	slots, err := h.Slots.FutureByActivity(ctx, id, time.Now().UTC())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": act, "slots": slots})
}

// afterScheduleChange drops the calendar cache and publishes the change
// event.  Both are best-effort and never fail the request.
func (h *ActivityHandler) afterScheduleChange(act *model.Activity, rep *schedule.Report) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		middleware.InvalidateCalendar(ctx, h.CacheCfg, h.RDB)
		ev := queue.ScheduleChangedEvent{
			ActivityID:   act.ID,
			ActivityType: act.Type,
			Title:        act.Title,
			ChangedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if rep != nil {
			ev.Created, ev.Deleted, ev.Resized, ev.Failed = rep.Created, rep.Deleted, rep.Resized, len(rep.Failures)
		}
		_ = queue_publisher.PublishScheduleChanged(ctx, ev)
	}()
}
