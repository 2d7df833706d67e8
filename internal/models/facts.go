package models

import "time"

// FactKind identifies the type of datum fetched from a source.
type FactKind string

const (
	FactQuote    FactKind = "quote"
	FactRatio    FactKind = "ratio"
	FactEarnings FactKind = "earnings"
)

// QuoteFact holds a live price snapshot for one instrument.
type QuoteFact struct {
	CurrentPrice  float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`   // absolute change from previous close
	ChangePct     float64   `json:"change_p"` // percentage change from previous close
	Volume        int64     `json:"volume"`
	ObservedAt    time.Time `json:"observed_at"`
}

// RatioFact holds valuation ratio data for one instrument.
// A nil PERatio means the ratio is unknown to the source, a valid
// terminal state, not an error.
type RatioFact struct {
	PERatio    *float64  `json:"pe_ratio,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// EarningsFact holds the latest reported earnings for one instrument.
// Fields are individually nullable; an all-nil fact means the source
// had no earnings data.
type EarningsFact struct {
	Date       *time.Time `json:"date,omitempty"`
	EPS        *float64   `json:"eps,omitempty"`
	Revenue    *float64   `json:"revenue,omitempty"`
	ObservedAt time.Time  `json:"observed_at"`
}
