package ratelimit

import (
	"sync"
	"time"

	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "chat").
	Name string

	// Burst is the bucket capacity; RefillRate is tokens per second.
	Burst      float64
	RefillRate float64

	// CleanupPeriod controls how often inactive buckets are removed.
	CleanupPeriod time.Duration

	// Optional metrics reporter.
	Metrics *metrics.Metrics
}

// KeyedLimiter tracks rate limits per key (e.g., client ID). It creates
// a separate token bucket for each key and automatically cleans up
// buckets that have refilled completely.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*Limiter
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

// NewKeyedLimiter creates a per-key rate limiter and starts its cleanup
// loop. Call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether a request for the given key is allowed,
// consuming a token when it is. The empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getOrCreateLimiter(key).Allow() {
		return true
	}

	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
	return false
}

func (kl *KeyedLimiter) getOrCreateLimiter(key string) *Limiter {
	kl.mu.RLock()
	limiter, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock.
	limiter, exists = kl.entries[key]
	if exists {
		return limiter
	}

	limiter = New(kl.config.Burst, kl.config.RefillRate)
	kl.entries[key] = limiter
	return limiter
}

// GetAvailable returns the number of available tokens for a key.
// Returns Burst if the key has no bucket yet.
func (kl *KeyedLimiter) GetAvailable(key string) float64 {
	kl.mu.RLock()
	limiter, exists := kl.entries[key]
	kl.mu.RUnlock()

	if !exists {
		return kl.config.Burst
	}
	return limiter.Available()
}

// GetActiveCount returns the number of tracked buckets.
func (kl *KeyedLimiter) GetActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, limiter := range kl.entries {
				if limiter.IsFull() {
					delete(kl.entries, key)
				}
			}
			kl.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopped.Do(func() { close(kl.stopCh) })
}
