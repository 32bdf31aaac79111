package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/padelhq/club-reservation/internal/config"
	"github.com/padelhq/club-reservation/internal/middleware"
	"github.com/padelhq/club-reservation/internal/queue"
	"github.com/padelhq/club-reservation/internal/repository"
	"github.com/padelhq/club-reservation/internal/schedule"
	queue_publisher "github.com/padelhq/club-reservation/internal/service"
)

// RegistrationHandler covers the member-facing sign-up surface: register,
// withdraw, per-slot rosters and the member's own upcoming schedule.  The
// eligibility and cut-off rules live in the schedule ledger; this layer
// only translates HTTP.
type RegistrationHandler struct {
	Members  *repository.MemberRepo
	Regs     *repository.RegistrationRepo
	Slots    *repository.SlotRepo
	Ledger   *schedule.Ledger
	CacheCfg config.CacheConfig
	RDB      *redis.Client
}

func NewRegistrationHandler(m *repository.MemberRepo, r *repository.RegistrationRepo, s *repository.SlotRepo,
	l *schedule.Ledger, cacheCfg config.CacheConfig, rdb *redis.Client) *RegistrationHandler {
	if m == nil || r == nil || s == nil || l == nil {
		panic("nil dependency passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Members: m, Regs: r, Slots: s, Ledger: l, CacheCfg: cacheCfg, RDB: rdb}
}

// Register signs the authenticated member up for a slot.  A full slot
// still accepts the registration; the member lands on the wait-list.
func (h *RegistrationHandler) Register(c echo.Context) error {
	slotID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	mid, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	member, err := h.Members.GetByID(ctx, mid)
	if err != nil {
		return writeDomainErr(c, err)
	}
	if err := h.Ledger.Register(ctx, member, slotID, isStaff(c)); err != nil {
		return writeDomainErr(c, err)
	}
	h.afterRegistrationChange(ctx, mid, slotID, "registered")
	return c.JSON(http.StatusCreated, echo.Map{"status": "registered", "slot_id": slotID})
}

// Withdraw removes the member's registration from a slot.
func (h *RegistrationHandler) Withdraw(c echo.Context) error {
	slotID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	mid, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Withdraw(ctx, mid, slotID, isStaff(c)); err != nil {
		return writeDomainErr(c, err)
	}
	h.afterRegistrationChange(ctx, mid, slotID, "withdrawn")
	return c.NoContent(http.StatusNoContent)
}

// Roster returns the slot's on-court set and wait-list.
func (h *RegistrationHandler) Roster(c echo.Context) error {
	slotID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	roster, err := h.Ledger.Roster(ctx, slotID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, roster)
}

// Mine lists the authenticated member's upcoming slots.
func (h *RegistrationHandler) Mine(c echo.Context) error {
	mid, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	slots, err := h.Regs.ListFutureByMember(ctx, mid, time.Now().UTC())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}

// afterRegistrationChange invalidates the calendar cache (sign-up counts
// are shown there) and publishes the change event.  Best-effort only.
func (h *RegistrationHandler) afterRegistrationChange(ctx context.Context, memberID, slotID uint64, action string) {
	sc, err := h.Slots.Resolve(ctx, slotID)
	var member string
	var title string
	var startsAt string
	if err == nil {
		scope, _ := sc.Activity.GoverningScope(sc.Event)
		title = scope.Title
		startsAt = sc.Slot.StartsAt.Format(time.RFC3339)
	}
	if m, err := h.Members.GetByID(ctx, memberID); err == nil {
		member = m.DisplayName()
	}
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		middleware.InvalidateCalendar(bg, h.CacheCfg, h.RDB)
		_ = queue_publisher.PublishRegistrationChanged(bg, queue.RegistrationChangedEvent{
			MemberID:   memberID,
			MemberName: member,
			SlotID:     slotID,
			Title:      title,
			StartsAt:   startsAt,
			Action:     action,
			ChangedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}()
}
