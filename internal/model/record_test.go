package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAction(t *testing.T) {
	assert.Equal(t, Action("DISCHARGE"), ActionDischarge)
	assert.Equal(t, Action("WAITING"), ActionWaiting)
}

func TestFlexPhase_Active(t *testing.T) {
	assert.False(t, FlexInactive.Active())
	assert.True(t, FlexBoost.Active())
	assert.True(t, FlexPayback.Active())
}

func TestTickRecord_Value(t *testing.T) {
	r := TickRecord{
		TimeOfDay:     12.5,
		Generation:    120,
		BatteryCharge: 54,
		Demand:        70,
		Balance:       23,
	}

	assert.InDelta(t, 120, r.Value(SeriesGeneration), 0.001)
	assert.InDelta(t, 70, r.Value(SeriesDemand), 0.001)
	assert.InDelta(t, 54, r.Value(SeriesBatteryCharge), 0.001)
	assert.InDelta(t, 23, r.Value(SeriesBalance), 0.001)
	assert.Zero(t, r.Value(Series("unknown")))
}

func TestSeriesCatalog(t *testing.T) {
	for _, s := range []Series{SeriesGeneration, SeriesDemand, SeriesBatteryCharge, SeriesBalance} {
		info, ok := SeriesCatalog[s]
		assert.True(t, ok, s)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Unit)
	}
}
