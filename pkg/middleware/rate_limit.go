package middleware

import (
	"net/http"
	"sync"
	"time"

	"telecare/pkg/logger"
)

// CallerExtractor identifies the requesting party for rate limiting. The
// portals send the acting patient or provider id in a header.
type CallerExtractor func(r *http.Request) string

type CallerRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor CallerExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewCallerRateLimiter(limit int, window time.Duration, extractor CallerExtractor, log *logger.Logger) *CallerRateLimiter {
	limiter := &CallerRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CallerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for caller, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, caller)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CallerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CallerRateLimiter) Allow(caller string) bool {
	if caller == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0, len(rl.requests[caller]))
	for _, ts := range rl.requests[caller] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[caller] = valid
		return false
	}

	rl.requests[caller] = append(valid, now)
	return true
}

func CallerRateLimit(limiter *CallerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := extractCaller(r, limiter.extractor)

			if caller == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(caller) {
				rejectRateLimited(w, limiter.log, r, caller)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractCaller(r *http.Request, extractor CallerExtractor) string {
	if extractor == nil {
		return DefaultCallerExtractor(r)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, caller string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFrom(r.Context()),
		"caller", caller,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultCallerExtractor(r *http.Request) string {
	if id := r.Header.Get("X-Patient-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Provider-ID")
}
