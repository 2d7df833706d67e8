// Package fetcher wraps a Source with timeout, retry/backoff, and
// cache-aside semantics.
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/Avishkar2004/8byte/internal/cache"
	"github.com/Avishkar2004/8byte/internal/common"
	"github.com/Avishkar2004/8byte/internal/errs"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
	"github.com/Avishkar2004/8byte/internal/ratelimit"
)

const (
	DefaultCacheTTL     = 15 * time.Second
	DefaultFetchTimeout = 8 * time.Second
	DefaultRetryCount   = 3
	DefaultBackoffBase  = 300 * time.Millisecond
	DefaultAdmitDelay   = 250 * time.Millisecond
)

// Fetcher composes cache-aside reads, rate-limit admission, and a
// bounded-retry state machine around one Source. It is safe for
// concurrent use; Cache and Limiter carry their own synchronization.
type Fetcher struct {
	source  interfaces.Source
	cache   *cache.TTLCache
	limiter *ratelimit.SlidingWindow
	logger  *common.Logger

	cacheTTL     time.Duration
	fetchTimeout time.Duration
	retryCount   int
	backoffBase  time.Duration
	admitDelay   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithCacheTTL sets how long fetched facts stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) { f.cacheTTL = ttl }
}

// WithFetchTimeout sets the per-attempt source timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.fetchTimeout = d }
}

// WithRetryCount sets the number of retries after the first attempt.
func WithRetryCount(n int) Option {
	return func(f *Fetcher) { f.retryCount = n }
}

// WithBackoffBase sets the base backoff delay (doubled each attempt).
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) { f.backoffBase = d }
}

// WithAdmitDelay sets the wait between rate-limit admission checks.
func WithAdmitDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.admitDelay = d }
}

// New creates a fetcher over source. source may be nil, in which case
// every miss surfaces an explicit unavailable error rather than
// fabricated data.
func New(source interfaces.Source, c *cache.TTLCache, limiter *ratelimit.SlidingWindow, logger *common.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:       source,
		cache:        c,
		limiter:      limiter,
		logger:       logger,
		cacheTTL:     DefaultCacheTTL,
		fetchTimeout: DefaultFetchTimeout,
		retryCount:   DefaultRetryCount,
		backoffBase:  DefaultBackoffBase,
		admitDelay:   DefaultAdmitDelay,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchQuote returns the quote fact for symbol, from cache or source.
func (f *Fetcher) FetchQuote(ctx context.Context, symbol string) (*models.QuoteFact, error) {
	return fetchFact(ctx, f, models.FactQuote, symbol, func(ctx context.Context) (*models.QuoteFact, error) {
		return f.source.FetchQuote(ctx, symbol)
	})
}

// FetchRatio returns the ratio fact for symbol, from cache or source.
func (f *Fetcher) FetchRatio(ctx context.Context, symbol string) (*models.RatioFact, error) {
	return fetchFact(ctx, f, models.FactRatio, symbol, func(ctx context.Context) (*models.RatioFact, error) {
		return f.source.FetchRatio(ctx, symbol)
	})
}

// FetchEarnings returns the earnings fact for symbol, from cache or source.
func (f *Fetcher) FetchEarnings(ctx context.Context, symbol string) (*models.EarningsFact, error) {
	return fetchFact(ctx, f, models.FactEarnings, symbol, func(ctx context.Context) (*models.EarningsFact, error) {
		return f.source.FetchEarnings(ctx, symbol)
	})
}

// fetchFact runs the full cache-aside / admit / retry pipeline for one
// logical fetch. The source is called at most retryCount+1 times; each
// call is separately admitted against the rate budget.
func fetchFact[T any](ctx context.Context, f *Fetcher, kind models.FactKind, symbol string, call func(context.Context) (*T, error)) (*T, error) {
	key := cache.Key{Kind: kind, Symbol: symbol}

	if v, ok := f.cache.Get(key); ok {
		if fact, ok := v.(*T); ok {
			return fact, nil
		}
	}

	if f.source == nil {
		return nil, errs.New(errs.KindUnavailable, string(kind), symbol, nil)
	}

	var lastErr error

	for attempt := 0; attempt <= f.retryCount; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base, 2*base, 4*base, ...
			delay := f.backoffBase << (attempt - 1)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, errs.New(errs.KindTimeout, string(kind), symbol, err)
			}
		}

		// Admission checks don't count as source attempts; starvation
		// here surfaces as latency, bounded only by ctx.
		if err := f.admit(ctx); err != nil {
			return nil, errs.New(errs.KindTimeout, string(kind), symbol, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
		fact, err := call(attemptCtx)
		cancel()

		if err == nil {
			f.cache.Set(key, fact, f.cacheTTL)
			return fact, nil
		}

		lastErr = classify(err, string(kind), symbol)

		if !errs.Retryable(lastErr) || ctx.Err() != nil {
			break
		}

		f.logger.Debug().
			Str("symbol", symbol).
			Str("fact", string(kind)).
			Int("attempt", attempt+1).
			Err(lastErr).
			Msg("Fetch attempt failed, retrying")
	}

	return nil, lastErr
}

// admit blocks until the rate limiter grants a slot or ctx is done.
func (f *Fetcher) admit(ctx context.Context) error {
	for {
		if f.limiter.TryAcquire() {
			return nil
		}
		if err := f.sleep(ctx, f.admitDelay); err != nil {
			return err
		}
	}
}

// classify wraps untyped source errors into the fetch taxonomy.
// Typed errors pass through unchanged.
func classify(err error, fact, symbol string) error {
	if errs.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.New(errs.KindTimeout, fact, symbol, err)
	}
	return errs.New(errs.KindTransient, fact, symbol, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ interfaces.Fetcher = (*Fetcher)(nil)
