package service

import (
	"math"
	"sync"
	"time"

	"videofetch/internal/model"
	"videofetch/pkg/logger"

	"go.uber.org/zap"
)

// rateWindow tracks one client's request count in the current window.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// RateLimitService is a fixed-window per-IP request gate. The window is
// anchored at the client's first request and reset lazily on access;
// stale entries are evicted on access as well, never by a timer. This is
// an approximate limiter, not a strict one.
type RateLimitService struct {
	cfg     *model.RateLimitConfig
	windows map[string]*rateWindow
	mu      sync.Mutex
	now     func() time.Time // test hook
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		cfg:     cfg,
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Allow reports whether the client may proceed. On rejection the second
// return value is the retry-after hint in seconds (remaining window).
func (rls *RateLimitService) Allow(ip string) (bool, int) {
	if !rls.cfg.Enabled {
		return true, 0
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	now := rls.now()
	window := time.Duration(rls.cfg.WindowSeconds) * time.Second

	rls.evictStale(now, window)

	entry, exists := rls.windows[ip]
	if !exists || now.Sub(entry.windowStart) >= window {
		rls.windows[ip] = &rateWindow{count: 1, windowStart: now}
		return true, 0
	}

	if entry.count >= rls.cfg.RequestsPerWindow {
		remaining := entry.windowStart.Add(window).Sub(now)
		retryAfter := int(math.Ceil(remaining.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		logger.LogWarn("Rate limit exceeded",
			zap.String("ip", ip),
			zap.Int("count", entry.count),
			zap.Int("retry_after", retryAfter))
		return false, retryAfter
	}

	entry.count++
	return true, 0
}

// Remaining returns how many requests the client has left in its window.
func (rls *RateLimitService) Remaining(ip string) int {
	if !rls.cfg.Enabled {
		return -1
	}

	rls.mu.Lock()
	defer rls.mu.Unlock()

	entry, exists := rls.windows[ip]
	if !exists {
		return rls.cfg.RequestsPerWindow
	}

	window := time.Duration(rls.cfg.WindowSeconds) * time.Second
	if rls.now().Sub(entry.windowStart) >= window {
		return rls.cfg.RequestsPerWindow
	}

	remaining := rls.cfg.RequestsPerWindow - entry.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TrackedClients returns the number of clients with a live window.
func (rls *RateLimitService) TrackedClients() int {
	rls.mu.Lock()
	defer rls.mu.Unlock()
	return len(rls.windows)
}

// evictStale drops windows that ended before now. Called under the lock.
func (rls *RateLimitService) evictStale(now time.Time, window time.Duration) {
	for ip, entry := range rls.windows {
		if now.Sub(entry.windowStart) >= window {
			delete(rls.windows, ip)
		}
	}
}
