package aggregator

import "github.com/Avishkar2004/8byte/internal/models"

// computeDerived fills in present value, gain/loss, and weight for rows
// with a known current price, and returns the total known present value.
// Stale rows keep nil derived fields and are excluded from the weight
// denominator; weights over the remaining rows sum to 1.
func computeDerived(rows []models.AggregatedRow) float64 {
	total := 0.0

	for i := range rows {
		q := rows[i].Quote
		if q == nil {
			continue
		}
		pv := q.CurrentPrice * rows[i].Instrument.ShareCount
		gl := pv - rows[i].Investment
		rows[i].PresentValue = &pv
		rows[i].GainLoss = &gl
		total += pv
	}

	if total <= 0 {
		return total
	}

	for i := range rows {
		if rows[i].PresentValue == nil {
			continue
		}
		w := *rows[i].PresentValue / total
		rows[i].Weight = &w
	}

	return total
}
