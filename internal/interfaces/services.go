package interfaces

import (
	"context"

	"github.com/Avishkar2004/8byte/internal/models"
)

// Fetcher provides cache-aside, rate-limited, retrying access to a Source.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*models.QuoteFact, error)
	FetchRatio(ctx context.Context, symbol string) (*models.RatioFact, error)
	FetchEarnings(ctx context.Context, symbol string) (*models.EarningsFact, error)
}

// AggregatorService produces portfolio snapshots from the holdings list.
type AggregatorService interface {
	// RunPass executes one aggregation pass over instruments. It always
	// returns one row per instrument in input order; per-instrument
	// failures degrade rows rather than aborting the pass.
	RunPass(ctx context.Context, instruments []models.Instrument) *models.PassResult
}

// HoldingsStore supplies the static instrument universe. GetHoldings
// serves the cached list; Reload re-reads the backing file so edits are
// picked up without a process restart.
type HoldingsStore interface {
	GetHoldings(ctx context.Context) ([]models.Instrument, error)
	Reload(ctx context.Context) ([]models.Instrument, error)
}
