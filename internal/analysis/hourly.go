package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"grid_balance_simulator/internal/model"
)

// HourlyPoint is the mean balance of every record sharing a time of day.
type HourlyPoint struct {
	Hour    float64 `json:"hour"`
	Balance float64 `json:"balance"`
	Count   int     `json:"count"`
}

// HourlyAverage groups records by time of day and averages their balance.
// Keys are snapped to the tick grid so float drift cannot split a bucket.
// The result is ordered by ascending hour.
func HourlyAverage(records []model.TickRecord, step float64) []HourlyPoint {
	buckets := make(map[int64][]float64)
	for _, r := range records {
		k := int64(math.Round(r.TimeOfDay / step))
		buckets[k] = append(buckets[k], r.Balance)
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]HourlyPoint, 0, len(keys))
	for _, k := range keys {
		vals := buckets[k]
		out = append(out, HourlyPoint{
			Hour:    float64(k) * step,
			Balance: stat.Mean(vals, nil),
			Count:   len(vals),
		})
	}
	return out
}
