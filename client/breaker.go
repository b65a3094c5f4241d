package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// BreakerClient wraps a Getter with per-host circuit breakers, so one
// failing upstream cannot stall probes against the others.
type BreakerClient struct {
	getter   Getter
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewBreakerClient creates a circuit breaker wrapper around a Getter.
func NewBreakerClient(g Getter) *BreakerClient {
	return &BreakerClient{
		getter:   g,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates a circuit breaker for the given host.
func (b *BreakerClient) getBreaker(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := b.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	b.breakers[host] = breaker
	return breaker
}

// GetJSON wraps the underlying getter's GetJSON with circuit breaker logic.
func (b *BreakerClient) GetJSON(ctx context.Context, rawURL string, v any) error {
	return b.call(rawURL, func() error {
		return b.getter.GetJSON(ctx, rawURL, v)
	})
}

// GetXML wraps the underlying getter's GetXML with circuit breaker logic.
func (b *BreakerClient) GetXML(ctx context.Context, rawURL string, v any) error {
	return b.call(rawURL, func() error {
		return b.getter.GetXML(ctx, rawURL, v)
	})
}

func (b *BreakerClient) call(rawURL string, fn func() error) error {
	host := extractHost(rawURL)
	breaker := b.getBreaker(host)

	if !breaker.Ready() {
		return fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	// Client-class responses (404 and friends) are real answers from a
	// healthy upstream; only server-class failures count against the breaker.
	var callErr error
	err := breaker.Call(func() error {
		callErr = fn()
		var httpErr *HTTPError
		if errors.As(callErr, &httpErr) &&
			httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests {
			return nil
		}
		return callErr
	}, 0)
	if callErr != nil {
		return callErr
	}
	return err
}

// States returns the current state of all circuit breakers (for health checks).
func (b *BreakerClient) States() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range b.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// extractHost extracts a host identifier from a URL for breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
