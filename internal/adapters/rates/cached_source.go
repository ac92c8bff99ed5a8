package rates

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/SscSPs/p2p_ledger/internal/observability"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL              = 5 * time.Minute
	DefaultMaxStaleness     = 24 * time.Hour
	DefaultFetchTimeout     = 5 * time.Second
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
	fetchKey                = "rates"
)

// Lookup results reported to metrics.
const (
	resultFresh   = "fresh"
	resultStale   = "stale"
	resultShared  = "shared"
	resultFetched = "fetched"
	resultMiss    = "miss"
)

// CachedSource serves rate snapshots from memory and refreshes them from a Fetcher.
//
// A snapshot younger than the TTL is returned as is. An older one, still within the max
// staleness, is returned immediately while a single background refresh runs. Past that
// (or with nothing cached) the caller waits for a fetch; concurrent callers share it.
// Fetches go through a circuit breaker. With no usable snapshot the result is a
// ConversionError.
type CachedSource struct {
	fetcher      Fetcher
	store        SnapshotStore
	breaker      *gobreaker.CircuitBreaker
	group        singleflight.Group
	ttl          time.Duration
	maxStaleness time.Duration
	fetchTimeout time.Duration
	metrics      *observability.Metrics
	logger       *slog.Logger
	now          func() time.Time

	breakerThreshold uint32
	breakerCooldown  time.Duration

	mu         sync.RWMutex
	current    domain.RateSnapshot
	refreshing atomic.Bool
}

var _ portssvc.RateSource = (*CachedSource)(nil)

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

func WithTTL(d time.Duration) CacheOption { return func(c *CachedSource) { c.ttl = d } }

func WithMaxStaleness(d time.Duration) CacheOption {
	return func(c *CachedSource) { c.maxStaleness = d }
}

func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *CachedSource) { c.fetchTimeout = d }
}

// WithSnapshotStore shares snapshots through store. nil disables sharing.
func WithSnapshotStore(store SnapshotStore) CacheOption {
	return func(c *CachedSource) { c.store = store }
}

func WithMetrics(m *observability.Metrics) CacheOption {
	return func(c *CachedSource) { c.metrics = m }
}

func WithLogger(l *slog.Logger) CacheOption { return func(c *CachedSource) { c.logger = l } }

func WithClock(now func() time.Time) CacheOption { return func(c *CachedSource) { c.now = now } }

// WithBreaker sets how many consecutive fetch failures open the breaker and how long it
// stays open.
func WithBreaker(threshold uint32, cooldown time.Duration) CacheOption {
	return func(c *CachedSource) {
		c.breakerThreshold = threshold
		c.breakerCooldown = cooldown
	}
}

// NewCachedSource creates a CachedSource in front of fetcher.
func NewCachedSource(fetcher Fetcher, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		fetcher:          fetcher,
		ttl:              DefaultTTL,
		maxStaleness:     DefaultMaxStaleness,
		fetchTimeout:     DefaultFetchTimeout,
		logger:           slog.Default(),
		now:              func() time.Time { return time.Now().UTC() },
		breakerThreshold: defaultBreakerThreshold,
		breakerCooldown:  defaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxStaleness < c.ttl {
		c.maxStaleness = c.ttl
	}

	threshold := c.breakerThreshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rates-provider",
		MaxRequests: 1,
		Timeout:     c.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return c
}

// GetRates returns the best snapshot available under the staleness policy.
func (c *CachedSource) GetRates(ctx context.Context) (domain.RateSnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := c.now()

	if snap, ok := c.serveCached(now); ok {
		return snap, nil
	}

	if c.store != nil {
		shared, ok, err := c.store.Load(ctx)
		if err != nil {
			logger.Warn("Failed to load shared rate snapshot", slog.String("error", err.Error()))
		} else if ok && shared.Age(now) < c.maxStaleness {
			c.adopt(shared)
			if shared.Age(now) >= c.ttl {
				c.refreshAsync()
			}
			c.metrics.ObserveRateLookup(resultShared, shared.Age(now))
			return shared, nil
		}
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		c.metrics.ObserveRateLookup(resultMiss, -1)
		logger.Error("No usable exchange rates", slog.String("error", err.Error()))
		return domain.RateSnapshot{}, apperrors.NewConversionError("", "", "exchange rates unavailable", err)
	}
	c.metrics.ObserveRateLookup(resultFetched, snap.Age(c.now()))
	return snap, nil
}

// Current returns the cached snapshot without any refresh.
func (c *CachedSource) Current() domain.RateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *CachedSource) serveCached(now time.Time) (domain.RateSnapshot, bool) {
	snap := c.Current()
	if snap.IsZero() {
		return domain.RateSnapshot{}, false
	}
	age := snap.Age(now)
	switch {
	case age < c.ttl:
		c.metrics.ObserveRateLookup(resultFresh, age)
		return snap, true
	case age < c.maxStaleness:
		c.refreshAsync()
		c.metrics.ObserveRateLookup(resultStale, age)
		return snap, true
	}
	return domain.RateSnapshot{}, false
}

func (c *CachedSource) adopt(snap domain.RateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.FetchedAt.After(c.current.FetchedAt) {
		c.current = snap
	}
}

// fetch performs one deduplicated, breaker-guarded upstream call. The call is detached
// from ctx cancellation since other callers may be waiting on it.
func (c *CachedSource) fetch(ctx context.Context) (domain.RateSnapshot, error) {
	v, err, _ := c.group.Do(fetchKey, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetcher.Fetch(fctx)
		})
		if err != nil {
			c.metrics.RateFetchFailed()
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				c.logger.Warn("circuit breaker open - rate fetch rejected")
			}
			return nil, err
		}

		snap := res.(domain.RateSnapshot)
		c.adopt(snap)
		if c.store != nil {
			if err := c.store.Save(fctx, snap); err != nil {
				c.logger.Warn("Failed to share rate snapshot", slog.String("error", err.Error()))
			}
		}
		return snap, nil
	})
	if err != nil {
		return domain.RateSnapshot{}, err
	}
	return v.(domain.RateSnapshot), nil
}

func (c *CachedSource) refreshAsync() {
	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.refreshing.Store(false)
		if _, err := c.fetch(context.Background()); err != nil {
			c.logger.Warn("Background rate refresh failed", slog.String("error", err.Error()))
		}
	}()
}
