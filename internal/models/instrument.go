// Package models defines data structures for the aggregation service
package models

// Instrument is the immutable identity record for one holding.
// It is supplied by the static holdings list and never mutated by the core.
type Instrument struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	Sector        string  `json:"sector,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	PurchasePrice float64 `json:"purchase_price"`
	ShareCount    float64 `json:"share_count"`
}

// Investment returns the cost basis for the holding.
func (i Instrument) Investment() float64 {
	return i.PurchasePrice * i.ShareCount
}
