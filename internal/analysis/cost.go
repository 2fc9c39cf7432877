package analysis

import (
	"gonum.org/v1/gonum/floats"
)

// CostStatus tells whether a daily cost could be computed.
type CostStatus string

const (
	CostOK               CostStatus = "ok"
	CostInsufficientData CostStatus = "insufficient_data"
)

// InsufficientDataMessage is reported when there is no full day of
// no-intervention data to derive prices from.
const InsufficientDataMessage = "Need >1 day without BESS&FLEX to create cost profile based on grid balance"

// PricePoint is the energy price at one time of day.
type PricePoint struct {
	Hour  float64 `json:"hour"`
	Price float64 `json:"price"`
}

// PriceCurve maps a reference hourly balance profile to prices: the most
// negative balance gets the high price, falling linearly by low towards the
// most positive balance. A flat profile gets high - low/2 everywhere.
func PriceCurve(reference []HourlyPoint, high, low float64) []PricePoint {
	if len(reference) == 0 {
		return nil
	}
	vals := make([]float64, len(reference))
	for i, p := range reference {
		vals[i] = p.Balance
	}
	minV, maxV := floats.Min(vals), floats.Max(vals)

	out := make([]PricePoint, len(reference))
	for i, p := range reference {
		price := high - low/2
		if maxV != minV {
			price = high - (p.Balance-minV)*low/(maxV-minV)
		}
		out[i] = PricePoint{Hour: p.Hour, Price: price}
	}
	return out
}

// Cost is the estimated daily energy cost of a cohort.
type Cost struct {
	Status CostStatus `json:"status"`
	Daily  float64    `json:"daily"`
}

// DailyCost prices an hourly profile: sum(-balance*price)/1000*step.
// It needs at least daySamples buckets, each with a price.
func DailyCost(hourly []HourlyPoint, prices []PricePoint, step float64, daySamples int) Cost {
	if len(hourly) < daySamples || len(prices) == 0 {
		return Cost{Status: CostInsufficientData}
	}
	byHour := make(map[float64]float64, len(prices))
	for _, p := range prices {
		byHour[p.Hour] = p.Price
	}

	terms := make([]float64, 0, len(hourly))
	for _, h := range hourly {
		price, ok := byHour[h.Hour]
		if !ok {
			return Cost{Status: CostInsufficientData}
		}
		terms = append(terms, -h.Balance*price)
	}
	return Cost{
		Status: CostOK,
		Daily:  floats.Sum(terms) / 1000 * step,
	}
}
