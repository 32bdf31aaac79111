package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations,
// costs and scheduling limits.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing

	VenueTZ       string // IANA time zone the venue's schedule is anchored in
	PerCourtMax   int    // players one court holds; drives courts-per-slot math
	HorizonDays   int    // how many days ahead slots are materialized
	OccurrenceCap int    // hard cap on occurrences expanded per rule
	CutOffHours   int    // hours before a slot start when sign-up closes
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The scheduling
// knobs fall back to the venue's standard defaults when unset.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),  // environment (dev/test/prod)
		Port:           must("APP_PORT"), // port to bind the HTTP server
		DBUser:         must("DB_USER"),  // database user
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		VenueTZ:       envOr("VENUE_TZ", "America/New_York"),
		PerCourtMax:   envIntOr("PER_COURT_MAX", 4),
		HorizonDays:   envIntOr("SCHEDULE_HORIZON_DAYS", 60),
		OccurrenceCap: envIntOr("OCCURRENCE_CAP", 366),
		CutOffHours:   envIntOr("REGISTRATION_CUTOFF_HOURS", 24),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envOr returns the variable's value or a default when unset/empty.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// envIntOr is like envOr for integer variables.  A set-but-unparseable
// value is still fatal: silently ignoring a typo would mis-size courts.
func envIntOr(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
