package analysis

import (
	"sort"
)

// ECDF is the empirical cumulative distribution of a sample: X sorted
// ascending and Y[i] = (i+1)/n.
type ECDF struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// NewECDF builds the distribution of values. The input is not modified.
// An empty sample yields an empty ECDF and ok == false.
func NewECDF(values []float64) (ECDF, bool) {
	n := len(values)
	if n == 0 {
		return ECDF{}, false
	}
	x := make([]float64, n)
	copy(x, values)
	sort.Float64s(x)

	y := make([]float64, n)
	for i := range y {
		y[i] = float64(i+1) / float64(n)
	}
	return ECDF{X: x, Y: y}, true
}

// Len returns the sample size.
func (e ECDF) Len() int { return len(e.X) }

// At returns the fraction of the sample less than or equal to v.
func (e ECDF) At(v float64) float64 {
	if len(e.X) == 0 {
		return 0
	}
	i := sort.Search(len(e.X), func(i int) bool { return e.X[i] > v })
	return float64(i) / float64(len(e.X))
}
