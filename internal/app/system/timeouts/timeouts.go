// Package timeouts provides centralized timeout values for handler and
// store operations.
//
// Every HTTP handler derives a context.WithTimeout from one of these
// values before touching the store. Centralizing them keeps each class of
// operation consistent and adjustable in one place.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads, the revalidation hook
//   - Medium: list queries, creates with follow-up appends
//   - Long: subtree expansion and cascading deletes
//   - Batch: integrity scans and repair passes
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Default timeout values (used unless Configure overrides them).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu sync.RWMutex

	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and creates.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for subtree expansion and cascading deletes,
// which make one store round trip per tree level.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the timeout for integrity scans and repair passes.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout overrides. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// ConfigureFromEnv reads THREADHUB_TIMEOUT_PING, _SHORT, _MEDIUM, _LONG
// and _BATCH (Go duration strings, e.g. "15s") and applies any that parse.
// Returns the number of values applied.
func ConfigureFromEnv() int {
	cfg := Config{}
	n := 0
	read := func(name string, dst *time.Duration) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return
		}
		*dst = d
		n++
	}
	read("THREADHUB_TIMEOUT_PING", &cfg.Ping)
	read("THREADHUB_TIMEOUT_SHORT", &cfg.Short)
	read("THREADHUB_TIMEOUT_MEDIUM", &cfg.Medium)
	read("THREADHUB_TIMEOUT_LONG", &cfg.Long)
	read("THREADHUB_TIMEOUT_BATCH", &cfg.Batch)
	if n > 0 {
		Configure(cfg)
	}
	return n
}
