// Package aggregator drives one aggregation pass: staggered concurrent
// fetch groups, partial-result merging, and derived field computation.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Avishkar2004/8byte/internal/common"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
)

const (
	DefaultStaggerDelay = 100 * time.Millisecond
	DefaultPassTimeout  = 45 * time.Second
)

// Service implements AggregatorService.
type Service struct {
	fetcher interfaces.Fetcher
	logger  *common.Logger

	staggerDelay time.Duration
	passTimeout  time.Duration

	now func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithStaggerDelay sets the inter-group start offset.
func WithStaggerDelay(d time.Duration) Option {
	return func(s *Service) { s.staggerDelay = d }
}

// WithPassTimeout sets the overall deadline for one pass.
func WithPassTimeout(d time.Duration) Option {
	return func(s *Service) { s.passTimeout = d }
}

// NewService creates an aggregator over fetcher.
func NewService(fetcher interfaces.Fetcher, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		fetcher:      fetcher,
		logger:       logger,
		staggerDelay: DefaultStaggerDelay,
		passTimeout:  DefaultPassTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunPass executes one aggregation pass. It always returns one row per
// instrument in input order; a failed quote degrades its row to stale
// rather than aborting the pass. The pass never outlives passTimeout.
func (s *Service) RunPass(ctx context.Context, instruments []models.Instrument) *models.PassResult {
	passID := uuid.NewString()
	start := s.now()

	ctx, cancel := context.WithTimeout(ctx, s.passTimeout)
	defer cancel()

	s.logger.Info().
		Str("pass", passID).
		Int("instruments", len(instruments)).
		Msg("Aggregation pass: starting")

	rows := make([]models.AggregatedRow, len(instruments))
	var wg sync.WaitGroup

	// Stagger group starts to smooth request arrival; the groups
	// themselves run concurrently once launched.
	launched := 0
	for i := range instruments {
		if i > 0 {
			if err := sleepCtx(ctx, s.staggerDelay); err != nil {
				break
			}
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows[i] = s.fetchGroup(ctx, instruments[i])
		}(i)
		launched = i + 1
	}

	// Deadline hit before all groups started: the remainder still gets
	// a row, marked stale.
	for i := launched; i < len(instruments); i++ {
		rows[i] = models.AggregatedRow{
			Instrument: instruments[i],
			Investment: instruments[i].Investment(),
			State:      models.StateFailed,
			Error:      "pass deadline exceeded before fetch started",
		}
	}

	wg.Wait()

	total := computeDerived(rows)

	end := s.now()
	succeeded, degraded, failed := countStates(rows)
	s.logger.Info().
		Str("pass", passID).
		Int("succeeded", succeeded).
		Int("degraded", degraded).
		Int("failed", failed).
		Float64("total_value", total).
		Dur("elapsed", end.Sub(start)).
		Msg("Aggregation pass: complete")

	return &models.PassResult{
		PassID:      passID,
		Rows:        rows,
		TotalValue:  total,
		StartedAt:   start,
		CompletedAt: end,
	}
}

// fetchGroup resolves the three facts for one instrument concurrently
// and folds them into a row with a terminal state.
func (s *Service) fetchGroup(ctx context.Context, inst models.Instrument) models.AggregatedRow {
	row := models.AggregatedRow{
		Instrument: inst,
		Investment: inst.Investment(),
		State:      models.StateFetching,
	}

	var (
		wg       sync.WaitGroup
		quote    *models.QuoteFact
		ratio    *models.RatioFact
		earnings *models.EarningsFact
		quoteErr error
		ratioErr error
		earnErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		quote, quoteErr = s.fetcher.FetchQuote(ctx, inst.Symbol)
	}()
	go func() {
		defer wg.Done()
		ratio, ratioErr = s.fetcher.FetchRatio(ctx, inst.Symbol)
	}()
	go func() {
		defer wg.Done()
		earnings, earnErr = s.fetcher.FetchEarnings(ctx, inst.Symbol)
	}()
	wg.Wait()

	row.Quote = quote
	row.Ratio = ratio
	row.Earnings = earnings

	switch {
	case quoteErr != nil:
		// Failed quote means no derived financials. Stale row, logged
		// not raised.
		row.State = models.StateFailed
		row.Error = quoteErr.Error()
		s.logger.Warn().Str("symbol", inst.Symbol).Err(quoteErr).Msg("Quote fetch failed, row marked stale")
	case ratioErr != nil || earnErr != nil:
		row.State = models.StateDegraded
		if ratioErr != nil {
			s.logger.Warn().Str("symbol", inst.Symbol).Err(ratioErr).Msg("Ratio fetch failed, field unknown")
		}
		if earnErr != nil {
			s.logger.Warn().Str("symbol", inst.Symbol).Err(earnErr).Msg("Earnings fetch failed, field unknown")
		}
	default:
		row.State = models.StateSucceeded
	}

	return row
}

func countStates(rows []models.AggregatedRow) (succeeded, degraded, failed int) {
	for i := range rows {
		switch rows[i].State {
		case models.StateSucceeded:
			succeeded++
		case models.StateDegraded:
			degraded++
		case models.StateFailed:
			failed++
		}
	}
	return succeeded, degraded, failed
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

var _ interfaces.AggregatorService = (*Service)(nil)
