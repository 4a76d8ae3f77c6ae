package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"skybook/pkg/logger"
)

// KeyExtractor picks the bucket a request is limited against. The default
// keys by client IP; authenticated routes could key by user instead.
type KeyExtractor func(r *http.Request) string

type ClientRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewClientRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *ClientRateLimiter {
	if extractor == nil {
		extractor = ClientIPExtractor
	}

	limiter := &ClientRateLimiter{
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

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *ClientRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClientIPExtractor(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
