package models

import "time"

// FetchState is the terminal state of one instrument's fetch group for a pass.
type FetchState string

const (
	StatePending   FetchState = "pending"
	StateFetching  FetchState = "fetching"
	StateSucceeded FetchState = "succeeded" // all three facts resolved
	StateDegraded  FetchState = "degraded"  // quote resolved, ratio or earnings missing
	StateFailed    FetchState = "failed"    // quote failed, row is stale
)

// AggregatedRow is the derived output for one instrument, recomputed every pass.
// Nil derived fields mean "unknown" (stale row), never zero.
type AggregatedRow struct {
	Instrument Instrument    `json:"instrument"`
	Quote      *QuoteFact    `json:"quote,omitempty"`
	Ratio      *RatioFact    `json:"ratio,omitempty"`
	Earnings   *EarningsFact `json:"earnings,omitempty"`

	Investment   float64  `json:"investment"`
	PresentValue *float64 `json:"present_value,omitempty"`
	GainLoss     *float64 `json:"gain_loss,omitempty"`
	Weight       *float64 `json:"weight,omitempty"` // fraction of total known present value

	State FetchState `json:"state"`
	Error string     `json:"error,omitempty"` // terminal fetch error for stale rows
}

// Stale reports whether the row's quote fetch failed for the current pass.
func (r *AggregatedRow) Stale() bool {
	return r.State == StateFailed
}

// PassResult is one complete aggregation run over the holdings list.
type PassResult struct {
	PassID      string          `json:"pass_id"`
	Rows        []AggregatedRow `json:"rows"`
	TotalValue  float64         `json:"total_value"` // sum of known present values
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}
