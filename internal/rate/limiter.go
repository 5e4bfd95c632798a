package rate

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (pubkey) plus a global bucket.
type Limiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.RWMutex
	r    rate.Limit
	b    int
}

var keyLimiter *Limiter
var globalLimiter *rate.Limiter
var startOnce sync.Once

// Start creates both the per-key and global rate limiters. Safe to call
// more than once and from concurrent requests.
func Start() {
	startOnce.Do(func() {
		keyLimiter = newKeyRateLimiter(rate.Limit(5), 10)
		globalLimiter = rate.NewLimiter(rate.Limit(100), 100)
	})
}

func newKeyRateLimiter(r rate.Limit, b int) *Limiter {
	return &Limiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.RWMutex{},
		r:    r,
		b:    b,
	}
}

// Allow reports whether a request for key may proceed now. Never blocks;
// callers turn a false into a 429.
func Allow(key string) bool {
	Start()
	if !globalLimiter.Allow() {
		return false
	}
	if key == "" {
		return true
	}
	return keyLimiter.GetLimiter(key).Allow()
}

// Add creates a new rate limiter and adds it to the keys map.
func (i *Limiter) Add(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter := rate.NewLimiter(i.r, i.b)
	i.keys[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for the provided key if it
// exists, otherwise calls Add to register it.
func (i *Limiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	limiter, exists := i.keys[key]
	if !exists {
		i.mu.Unlock()
		return i.Add(key)
	}
	i.mu.Unlock()
	return limiter
}
