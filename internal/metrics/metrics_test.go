package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/simulator"
)

func TestMetrics_OnTick(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.OnTick(simulator.Snapshot{
		BatteryCharge:       40,
		GridBalance:         -12.5,
		RenewableGeneration: 80,
		GridDemand:          92.5,
		Decision:            model.ActionHold,
		DemandModification:  1.33,
		ChargingLocked:      true,
		BatteryCycles:       0.25,
	}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("HOLD")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.decisions.WithLabelValues("CHARGE")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.charge))
	assert.Equal(t, -12.5, testutil.ToFloat64(m.balance))
	assert.Equal(t, 80.0, testutil.ToFloat64(m.generation))
	assert.Equal(t, 92.5, testutil.ToFloat64(m.demand))
	assert.Equal(t, 1.33, testutil.ToFloat64(m.modification))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.locked))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.cycles))
}

func TestMetrics_OnState(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.OnState(simulator.State{Running: true, FPS: 12})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.running))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.fps))

	m.OnState(simulator.State{Running: false, FPS: 12})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.running))
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	// the decision vector is pre-populated with every action
	assert.Equal(t, 4, testutil.CollectAndCount(reg, "gbset_bess_decisions_total"))
	assert.Panics(t, func() { New(reg) })
}

func TestMetrics_EngineCallback(t *testing.T) {
	m := New(prometheus.NewRegistry())
	p := config.Default()
	e, err := simulator.New(p, profile.New(p, profile.NewSource(1)), m)
	require.NoError(t, err)

	e.Run(48)

	assert.Equal(t, 48.0, testutil.ToFloat64(m.ticksTotal))
	var total float64
	for _, a := range []string{"CHARGE", "DISCHARGE", "HOLD", "WAITING"} {
		total += testutil.ToFloat64(m.decisions.WithLabelValues(a))
	}
	assert.Equal(t, 48.0, total)
	assert.Equal(t, e.Snapshot().BatteryCharge, testutil.ToFloat64(m.charge))
}
