package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sprout/internal/config"
	"sprout/pkg/utils"
)

const (
	// Rate Limit Rules
	DefaultRequests = 20 // Steady state rate (token refilling speed)

	BurstSize = 50 // Max burst capacity (bucket size) for traffic spikes

	// Garbage Collection
	VisitorTTL      = 5 * time.Minute // Time before an inactive IP is removed from memory
	CleanupInterval = 3 * time.Minute // Frequency of the cleanup routine
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func init() {
	go startCleanupRoutine()
}

// startCleanupRoutine removes stale visitor entries so the map cannot grow
// without bound.
func startCleanupRoutine() {
	ticker := time.NewTicker(CleanupInterval)
	for range ticker.C {
		mu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > VisitorTTL {
				delete(visitors, ip)
			}
		}
		mu.Unlock()
	}
}

func getVisitor(ip string, conf config.RateLimitConfig) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[ip]
	if !exists {
		windowDuration, _ := time.ParseDuration(conf.Window)
		if windowDuration == 0 {
			windowDuration = time.Second
		}

		requests := conf.Requests
		if requests == 0 {
			requests = DefaultRequests
		}

		rps := float64(requests) / windowDuration.Seconds()

		burst := conf.Burst
		if burst == 0 {
			burst = BurstSize
		}

		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// RateLimit enforces request quotas per IP address.
// Blocks excessive requests with a 429 JSON response.
func RateLimit(conf config.RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !conf.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			limiter := getVisitor(utils.GetRealIP(r), conf)
			if !limiter.Allow() {
				utils.WriteError(
					w,
					http.StatusTooManyRequests,
					utils.ErrRequestRateLimitExceeded,
					"Too many requests. Please wait a moment.",
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
