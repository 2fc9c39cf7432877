package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/simulator"
)

const namespace = "gbset"

// Metrics exports the live simulation signals as Prometheus collectors.
// It is a simulator.Callback and is updated once per tick.
type Metrics struct {
	ticksTotal   prometheus.Counter
	decisions    *prometheus.CounterVec
	charge       prometheus.Gauge
	balance      prometheus.Gauge
	generation   prometheus.Gauge
	demand       prometheus.Gauge
	modification prometheus.Gauge
	locked       prometheus.Gauge
	running      prometheus.Gauge
	fps          prometheus.Gauge
	cycles       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total simulation ticks executed.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bess_decisions_total",
			Help:      "BESS controller decisions by action.",
		}, []string{"action"}),
		charge:       gauge("battery_charge_kwh", "Stored BESS energy."),
		balance:      gauge("grid_balance_kw", "Grid balance of the last tick."),
		generation:   gauge("renewable_generation_kw", "Renewable generation of the last tick."),
		demand:       gauge("grid_demand_kw", "Grid demand of the last tick."),
		modification: gauge("demand_modification", "Current flexibility demand multiplier."),
		locked:       gauge("bess_locked", "1 while the BESS is locked."),
		running:      gauge("running", "1 while the paced loop runs."),
		fps:          gauge("fps", "Configured tick rate."),
		cycles:       gauge("battery_cycles", "Equivalent full BESS cycles."),
	}

	reg.MustRegister(
		m.ticksTotal,
		m.decisions,
		m.charge,
		m.balance,
		m.generation,
		m.demand,
		m.modification,
		m.locked,
		m.running,
		m.fps,
		m.cycles,
	)

	for _, a := range []model.Action{model.ActionCharge, model.ActionDischarge, model.ActionHold, model.ActionWaiting} {
		m.decisions.WithLabelValues(string(a))
	}
	m.modification.Set(1)

	return m
}

func (m *Metrics) OnState(s simulator.State) {
	m.running.Set(boolToFloat(s.Running))
	m.fps.Set(s.FPS)
}

func (m *Metrics) OnTick(s simulator.Snapshot, _ []model.TickRecord) {
	m.ticksTotal.Inc()
	m.decisions.WithLabelValues(string(s.Decision)).Inc()
	m.charge.Set(s.BatteryCharge)
	m.balance.Set(s.GridBalance)
	m.generation.Set(s.RenewableGeneration)
	m.demand.Set(s.GridDemand)
	m.modification.Set(s.DemandModification)
	m.locked.Set(boolToFloat(s.ChargingLocked))
	m.cycles.Set(s.BatteryCycles)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
