package config

import "time"

// CacheConfig defines settings for the calendar response cache.  The
// calendar is the hot read path and tolerates slightly stale data; writes
// that change the schedule invalidate the prefix.  When Enabled is false
// or no Redis client is configured, caching is disabled.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "cal"),
	}
}
