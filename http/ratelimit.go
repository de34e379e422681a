package http

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-domain request rate limiting using a token bucket.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// DefaultRPS is the requests-per-second limit applied to any domain
	// without a custom rate. 0 means unlimited.
	DefaultRPS float64
	// CustomRates maps domain suffixes to RPS values.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns conservative defaults for YouTube endpoints.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		DefaultRPS: 5.0,
		CustomRates: map[string]float64{
			"youtube.com": 2.5,
		},
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until the rate limit allows a request for the given URL, or the
// context is done.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}
	limiter := rl.getLimiter(extractDomain(urlStr))
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// getLimiter returns the limiter for a domain, creating one if necessary.
// Returns nil when the domain is unlimited.
func (rl *RateLimiter) getLimiter(domain string) *rate.Limiter {
	rps := rl.config.DefaultRPS
	for suffix, custom := range rl.config.CustomRates {
		if strings.HasSuffix(domain, suffix) {
			rps = custom
			break
		}
	}
	if rps <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters[domain]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = limiter
	return limiter
}

// extractDomain returns the host portion of a URL, without port.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return u.Hostname()
}
