package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/padelhq/club-reservation/internal/config"
	"github.com/padelhq/club-reservation/internal/handler"
	"github.com/padelhq/club-reservation/internal/middleware"
	"github.com/padelhq/club-reservation/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Calendar     *handler.CalendarHandler
	Events       *handler.EventHandler
	Activities   *handler.ActivityHandler
	Registration *handler.RegistrationHandler
}

// Register wires the full route table:
//
//	public:   health check, calendar, courts, events
//	auth:     register/login/refresh/logout under /v1/auth
//	member:   sign-up, withdraw, rosters, own schedule (JWT, any role)
//	staff:    activity and event CRUD (JWT + STAFF role)
//
// The calendar routes sit behind the Redis response cache and every
// public and authenticated route behind the rate limiter.
func Register(e *echo.Echo, h Handlers, jwtSecret string,
	cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {

	limiter := middleware.NewRateLimit(rlCfg, rdb)
	calCache := middleware.NewCalendarCache(cacheCfg, rdb)

	e.GET("/healthz", handler.Health)

	// ---- Public browse ----
	pub := e.Group("/v1", limiter)
	pub.GET("/calendar", h.Calendar.Calendar, calCache)
	pub.GET("/courts", h.Calendar.ListCourts, calCache)
	pub.GET("/events", h.Events.List)
	pub.GET("/events/:id", h.Events.Get)

	// ---- Auth ----
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// ---- Member (any authenticated role) ----
	member := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleMember),
		limiter,
	)
	member.GET("/me", h.Auth.Me)
	member.PATCH("/me", h.Auth.UpdateMe)
	member.GET("/me/slots", h.Registration.Mine)
	member.POST("/slots/:id/register", h.Registration.Register)
	member.DELETE("/slots/:id/register", h.Registration.Withdraw)
	member.GET("/slots/:id/roster", h.Registration.Roster)

	// ---- Staff ----
	staff := e.Group("/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
		limiter,
	)
	staff.POST("/activities", h.Activities.Create)
	staff.GET("/activities", h.Activities.List)
	staff.GET("/activities/:id", h.Activities.Get)
	staff.PUT("/activities/:id", h.Activities.Update)
	staff.PATCH("/activities/:id", h.Activities.Update) // partial edits share the handler
	staff.DELETE("/activities/:id", h.Activities.Delete)

	staff.POST("/events", h.Events.Create)
	staff.PUT("/events/:id", h.Events.Update)
	staff.PATCH("/events/:id", h.Events.Update)
}
