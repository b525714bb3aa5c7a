// Package pricing derives booking amounts from a court's hourly rate table.
package pricing

import (
	"bookminton/pkg/model"
)

// Quote is a priced interval.
type Quote struct {
	SportID      string  `json:"sport_id"`
	PricePerHour float64 `json:"price_per_hour"`
	Hours        int     `json:"hours"`
	Amount       float64 `json:"amount"`
	Offered      bool    `json:"offered"`
}

// FindPricing returns the first entry whose sport matches sportID.
func FindPricing(sportID string, table []model.SportPricing) (model.SportPricing, bool) {
	for _, p := range table {
		if p.Sport.ID == sportID {
			return p, true
		}
	}
	return model.SportPricing{}, false
}

// CalculatePrice charges whole hours only; a partial hour is free. A sport without an
// entry in the table costs 0.
func CalculatePrice(sportID string, table []model.SportPricing, iv model.Interval) float64 {
	return NewQuote(sportID, table, iv).Amount
}

func NewQuote(sportID string, table []model.SportPricing, iv model.Interval) Quote {
	q := Quote{SportID: sportID, Hours: iv.WholeHours()}

	p, ok := FindPricing(sportID, table)
	if !ok {
		return q
	}
	q.Offered = true
	q.PricePerHour = p.PricePerHour
	q.Amount = float64(q.Hours) * p.PricePerHour
	return q
}
