package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/techappsUT/planer/internal/domain/socialaccount"
)

// RateLimiter throttles outbound publish calls per platform+account so a
// burst of due publications for one account can't trip the platform's
// own API limits. Grounded on internal/social/ratelimiter.go, generalized
// from a fixed Twitter/Facebook/LinkedIn switch to the driver set this
// rebuild actually carries.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (rl *RateLimiter) get(platform socialaccount.Platform, accountID string) *rate.Limiter {
	key := fmt.Sprintf("%s:%s", platform, accountID)

	rl.mu.RLock()
	l, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		return l
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters[key]; ok {
		return l
	}

	var r rate.Limit
	var burst int
	switch platform {
	case socialaccount.PlatformInstagram:
		r, burst = rate.Every(time.Hour/200), 20
	case socialaccount.PlatformTikTok:
		r, burst = rate.Every(time.Minute/6), 5
	default:
		r, burst = rate.Every(time.Minute), 10
	}

	l = rate.NewLimiter(r, burst)
	rl.limiters[key] = l
	return l
}

// Wait blocks until the platform+account's limiter admits the call, or
// ctx is cancelled first.
func (rl *RateLimiter) Wait(ctx context.Context, platform socialaccount.Platform, accountID string) error {
	return rl.get(platform, accountID).Wait(ctx)
}
