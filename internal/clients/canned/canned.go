// Package canned provides a deterministic Source for development and tests.
package canned

import (
	"context"
	"time"

	"github.com/Avishkar2004/8byte/internal/errs"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
)

// Facts holds the canned data for one symbol.
type Facts struct {
	Quote    *models.QuoteFact
	Ratio    *models.RatioFact
	Earnings *models.EarningsFact
}

// Source returns fixed facts per symbol. Symbols without an entry get a
// NotFound error, so partial-failure paths are exercisable without a
// network. Safe for concurrent use after construction.
type Source struct {
	facts map[string]Facts
	now   func() time.Time
}

// New creates a canned source over the given symbol table.
func New(facts map[string]Facts) *Source {
	return &Source{facts: facts, now: time.Now}
}

// FetchQuote returns the canned quote for symbol.
func (s *Source) FetchQuote(_ context.Context, symbol string) (*models.QuoteFact, error) {
	f, ok := s.facts[symbol]
	if !ok || f.Quote == nil {
		return nil, errs.New(errs.KindNotFound, string(models.FactQuote), symbol, nil)
	}
	q := *f.Quote
	if q.ObservedAt.IsZero() {
		q.ObservedAt = s.now()
	}
	return &q, nil
}

// FetchRatio returns the canned ratio for symbol.
func (s *Source) FetchRatio(_ context.Context, symbol string) (*models.RatioFact, error) {
	f, ok := s.facts[symbol]
	if !ok {
		return nil, errs.New(errs.KindNotFound, string(models.FactRatio), symbol, nil)
	}
	if f.Ratio == nil {
		// Unknown ratio is a valid terminal state
		return &models.RatioFact{ObservedAt: s.now()}, nil
	}
	r := *f.Ratio
	if r.ObservedAt.IsZero() {
		r.ObservedAt = s.now()
	}
	return &r, nil
}

// FetchEarnings returns the canned earnings for symbol.
func (s *Source) FetchEarnings(_ context.Context, symbol string) (*models.EarningsFact, error) {
	f, ok := s.facts[symbol]
	if !ok {
		return nil, errs.New(errs.KindNotFound, string(models.FactEarnings), symbol, nil)
	}
	if f.Earnings == nil {
		return &models.EarningsFact{ObservedAt: s.now()}, nil
	}
	e := *f.Earnings
	if e.ObservedAt.IsZero() {
		e.ObservedAt = s.now()
	}
	return &e, nil
}

var _ interfaces.Source = (*Source)(nil)
