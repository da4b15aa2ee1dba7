// Package timeouts holds the deadlines handlers and workers put on store
// calls. Values start at the defaults and are replaced once at startup by
// Configure.
//
//   - Ping: health checks
//   - Read: single-record reads and sign-in lookups
//   - Search: list pages and tiered searches
//   - Write: create, update, delete
//   - Backfill: one full derived-field backfill pass
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultRead     = 5 * time.Second
	DefaultSearch   = 10 * time.Second
	DefaultWrite    = 10 * time.Second
	DefaultBackfill = 10 * time.Minute
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping     time.Duration
	Read     time.Duration
	Search   time.Duration
	Write    time.Duration
	Backfill time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Read:     DefaultRead,
		Search:   DefaultSearch,
		Write:    DefaultWrite,
		Backfill: DefaultBackfill,
	}
}

func Ping() time.Duration     { return get().Ping }
func Read() time.Duration     { return get().Read }
func Search() time.Duration   { return get().Search }
func Write() time.Duration    { return get().Write }
func Backfill() time.Duration { return get().Backfill }

func get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&cur.Ping, cfg.Ping)
	set(&cur.Read, cfg.Read)
	set(&cur.Search, cfg.Search)
	set(&cur.Write, cfg.Write)
	set(&cur.Backfill, cfg.Backfill)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// Current returns the active configuration, for startup logging.
func Current() Config { return get() }

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline, rather than the caller, ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Search(), h.Log, "search influencers")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
