// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter per key. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
// Call Close to stop its cleanup goroutine.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow counts a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// RetryAfter returns how long until key's window resets, or zero when key
// is not currently limited.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || w.count < l.limit {
		return 0
	}
	d := w.expiresAt.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Reasons returned by LoginLimiter.Check.
const (
	ReasonIP    = "ip"
	ReasonEmail = "email"
)

// LoginLimiter limits sign-in attempts per client IP and per email, so that
// neither a single client nor a distributed attack on one account can guess
// passwords quickly.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// LoginConfig sets the two windows of a LoginLimiter.
type LoginConfig struct {
	IPLimit     int
	IPWindow    time.Duration
	EmailLimit  int
	EmailWindow time.Duration
}

// DefaultLoginConfig allows 10 attempts per IP per minute and 5 per email
// per 5 minutes.
var DefaultLoginConfig = LoginConfig{
	IPLimit:     10,
	IPWindow:    time.Minute,
	EmailLimit:  5,
	EmailWindow: 5 * time.Minute,
}

// NewLoginLimiter creates a limiter; zero fields take the defaults.
func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	if cfg.IPLimit <= 0 || cfg.IPWindow <= 0 {
		cfg.IPLimit, cfg.IPWindow = DefaultLoginConfig.IPLimit, DefaultLoginConfig.IPWindow
	}
	if cfg.EmailLimit <= 0 || cfg.EmailWindow <= 0 {
		cfg.EmailLimit, cfg.EmailWindow = DefaultLoginConfig.EmailLimit, DefaultLoginConfig.EmailWindow
	}
	return &LoginLimiter{
		ip:    New(cfg.IPLimit, cfg.IPWindow),
		email: New(cfg.EmailLimit, cfg.EmailWindow),
	}
}

// Check counts an attempt. When it is over a limit, Check returns false,
// which limit tripped and how long the caller should wait.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, reason string, retry time.Duration) {
	ip := ClientIP(r)
	if !ll.ip.Allow(ip) {
		return false, ReasonIP, ll.ip.RetryAfter(ip)
	}
	if key := emailKey(email); key != "" {
		if !ll.email.Allow(key) {
			return false, ReasonEmail, ll.email.RetryAfter(key)
		}
	}
	return true, "", 0
}

// ResetEmail clears the email window after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

// Close stops both limiters.
func (ll *LoginLimiter) Close() {
	ll.ip.Close()
	ll.email.Close()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
