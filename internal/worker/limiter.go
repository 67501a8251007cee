package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key: a domain for batch fetches,
// a client address for the API
type Limiter struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	defaultRate  rate.Limit
	defaultBurst int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter; burst <= 0 means 5
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		buckets:      make(map[string]*bucket),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until key has a token or ctx ends
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow takes a token for key without waiting
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// WaitURL waits on the bucket for rawURL's host
func (l *Limiter) WaitURL(ctx context.Context, rawURL string) error {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return err
	}
	return l.Wait(ctx, domain)
}

// SetRate overrides the rate for one key
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.buckets[key] = &bucket{
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		lastSeen: time.Now(),
	}
}

// Evict drops buckets idle for longer than maxIdle and returns how many went
func (l *Limiter) Evict(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Len reports the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.defaultRate, l.defaultBurst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// extractDomain returns the lowercased host of rawURL without port or "www."
func extractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
