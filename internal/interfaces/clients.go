// Package interfaces defines service contracts for the aggregation core
package interfaces

import (
	"context"

	"github.com/Avishkar2004/8byte/internal/models"
)

// Source is the capability abstraction over one external data provider.
// The core does not know whether an implementation scrapes a page, calls
// a REST API, or returns canned data, only that each call respects ctx
// and returns a typed fetch error on failure.
type Source interface {
	// FetchQuote retrieves the current price snapshot for a symbol
	FetchQuote(ctx context.Context, symbol string) (*models.QuoteFact, error)

	// FetchRatio retrieves valuation ratio data for a symbol
	FetchRatio(ctx context.Context, symbol string) (*models.RatioFact, error)

	// FetchEarnings retrieves the latest earnings data for a symbol
	FetchEarnings(ctx context.Context, symbol string) (*models.EarningsFact, error)
}
