package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_balance_simulator/internal/model"
)

func TestHourlyAverage(t *testing.T) {
	recs := []model.TickRecord{
		{TimeOfDay: 1, Balance: 10},
		{TimeOfDay: 0, Balance: -4},
		{TimeOfDay: 1, Balance: 20},
		{TimeOfDay: 0.5, Balance: 3},
		{TimeOfDay: 0, Balance: -6},
	}

	got := HourlyAverage(recs, 0.5)
	assert.Equal(t, []HourlyPoint{
		{Hour: 0, Balance: -5, Count: 2},
		{Hour: 0.5, Balance: 3, Count: 1},
		{Hour: 1, Balance: 15, Count: 2},
	}, got)
}

func TestHourlyAverage_DriftSnapsToGrid(t *testing.T) {
	recs := []model.TickRecord{
		{TimeOfDay: 0.1, Balance: 1},
		{TimeOfDay: 0.1 + 0.2 - 0.2 + 1e-12, Balance: 3},
		{TimeOfDay: 0.30000000000000004, Balance: 5},
	}

	got := HourlyAverage(recs, 0.1)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.1, got[0].Hour, 1e-12)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 2, got[0].Balance, 1e-12)
	assert.InDelta(t, 0.3, got[1].Hour, 1e-12)
}

func TestHourlyAverage_Empty(t *testing.T) {
	assert.Empty(t, HourlyAverage(nil, 0.5))
}
