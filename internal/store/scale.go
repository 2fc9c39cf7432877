package store

import (
	"grid_balance_simulator/internal/model"
)

// Scale maps plotted values of a window onto the unit interval.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// plottedSeries are the lines drawn in the live chart.
var plottedSeries = []model.Series{
	model.SeriesGeneration,
	model.SeriesBatteryCharge,
	model.SeriesDemand,
	model.SeriesBalance,
}

// ScaleOf returns the common min/max over all plotted series of the window.
// An empty or flat window yields a unit scale around its value.
func ScaleOf(window []model.TickRecord) Scale {
	if len(window) == 0 {
		return Scale{Min: 0, Max: 1}
	}
	s := Scale{Min: window[0].Generation, Max: window[0].Generation}
	for _, r := range window {
		for _, series := range plottedSeries {
			v := r.Value(series)
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
	}
	if s.Max == s.Min {
		s.Max = s.Min + 1
	}
	return s
}

// Normalize returns v in scale units: 0 at Min, 1 at Max.
func (s Scale) Normalize(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}
