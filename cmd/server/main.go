package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/padelhq/club-reservation/internal/config"
	"github.com/padelhq/club-reservation/internal/database"
	"github.com/padelhq/club-reservation/internal/handler"
	"github.com/padelhq/club-reservation/internal/queue"
	"github.com/padelhq/club-reservation/internal/recurrence"
	"github.com/padelhq/club-reservation/internal/repository"
	"github.com/padelhq/club-reservation/internal/router"
	"github.com/padelhq/club-reservation/internal/schedule"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; calendar cache and rate limiting disabled")
	}

	loc, err := time.LoadLocation(cfg.VenueTZ)
	if err != nil {
		log.Fatalf("invalid VENUE_TZ %q: %v", cfg.VenueTZ, err)
	}

	// Repositories
	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	courts := repository.NewCourtRepo(db)
	activities := repository.NewActivityRepo(db)
	slots := repository.NewSlotRepo(db)
	regs := repository.NewRegistrationRepo(db)
	store := repository.NewScheduleStore(db)

	// Seed the standard court fixture (idempotent).
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := courts.EnsureDefaults(seedCtx); err != nil {
		cancel()
		log.Fatalf("seed courts: %v", err)
	}
	cancel()

	// Scheduling core
	engine := recurrence.NewEngine(loc, cfg.HorizonDays, cfg.OccurrenceCap)
	alloc := &schedule.Allocator{PerCourtMax: cfg.PerCourtMax}
	rec := schedule.NewReconciler(store, engine, alloc, nil)
	ledger := schedule.NewLedger(slots, regs, time.Duration(cfg.CutOffHours)*time.Hour, nil)

	// Background consumer: logs schedule/registration events from the broker.
	go func() {
		if err := queue.StartScheduleConsumer(); err != nil {
			log.Printf("schedule consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, members, tokens),
		Calendar:     handler.NewCalendarHandler(slots, engine, courts),
		Events:       handler.NewEventHandler(events, activities),
		Activities:   handler.NewActivityHandler(activities, events, slots, rec, cacheCfg, rdb),
		Registration: handler.NewRegistrationHandler(members, regs, slots, ledger, cacheCfg, rdb),
	}, cfg.JWTSecret, cacheCfg, rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.VenueTZ)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
