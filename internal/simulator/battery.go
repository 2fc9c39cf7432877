package simulator

import (
	"math"

	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
)

// BatteryConfig holds the BESS parameters.
type BatteryConfig struct {
	CapacityKWh         float64 `json:"capacity_kwh"`
	ChargeRateKW        float64 `json:"charge_rate_kw"`
	DischargeRateKW     float64 `json:"discharge_rate_kw"`
	ChargeEfficiency    float64 `json:"charge_efficiency"`
	DischargeEfficiency float64 `json:"discharge_efficiency"`
	DischargeThreshold  float64 `json:"discharge_threshold_kw"`
	ChargeThreshold     float64 `json:"charge_threshold_kw"`
}

// BatteryConfigFrom extracts the BESS parameters from a parameter set.
func BatteryConfigFrom(p config.Params) BatteryConfig {
	return BatteryConfig{
		CapacityKWh:         p.BatteryCapacity,
		ChargeRateKW:        p.ChargeRate,
		DischargeRateKW:     p.DischargeRate,
		ChargeEfficiency:    p.ChargeEfficiency,
		DischargeEfficiency: p.DischargeEfficiency,
		DischargeThreshold:  p.DischargeThreshold,
		ChargeThreshold:     p.ChargeThreshold,
	}
}

// Decide returns the controller action for the current readings.
// Discharge is checked before charge; the threshold ranges are disjoint.
func Decide(cfg BatteryConfig, generation, demand, charge float64, locked bool) model.Action {
	gap := generation - demand
	switch {
	case gap < cfg.DischargeThreshold && charge > 0:
		return model.ActionDischarge
	case gap > cfg.ChargeThreshold && charge < cfg.CapacityKWh && !locked:
		return model.ActionCharge
	case charge > 0:
		return model.ActionHold
	default:
		return model.ActionWaiting
	}
}

// ProcessResult is returned by Battery.Process for each tick.
type ProcessResult struct {
	Action model.Action
	// Contribution to the grid balance (kW): positive when supplying the
	// grid, negative when drawing from it to charge.
	Contribution float64
	Charge       float64
}

// Battery simulates the BESS energy level.
type Battery struct {
	config BatteryConfig

	Charge float64

	// Stats
	TotalThroughputKWh float64
}

// NewBattery creates an empty battery.
func NewBattery(cfg BatteryConfig) *Battery {
	return &Battery{config: cfg}
}

// Config returns the battery parameters.
func (b *Battery) Config() BatteryConfig {
	return b.config
}

// Process decides and applies one tick of length dt hours.
// A locked battery never changes its charge and contributes nothing.
func (b *Battery) Process(generation, demand float64, locked bool, dt float64) ProcessResult {
	action := Decide(b.config, generation, demand, b.Charge, locked)

	var contribution float64
	if !locked {
		switch action {
		case model.ActionCharge:
			energy := b.config.ChargeRateKW * b.config.ChargeEfficiency * dt
			b.Charge += energy
			contribution = -energy
		case model.ActionDischarge:
			energy := b.config.DischargeRateKW * b.config.DischargeEfficiency * dt
			b.Charge -= energy
			contribution = energy
		}
	}

	before := b.Charge
	b.Charge = math.Max(0, math.Min(b.Charge, b.config.CapacityKWh))
	b.TotalThroughputKWh += math.Abs(contribution) - math.Abs(before-b.Charge)

	return ProcessResult{
		Action:       action,
		Contribution: contribution,
		Charge:       b.Charge,
	}
}

// Cycles returns the equivalent full cycle count.
func (b *Battery) Cycles() float64 {
	if b.config.CapacityKWh <= 0 {
		return 0
	}
	return b.TotalThroughputKWh / 2 / b.config.CapacityKWh
}

// Reset empties the battery and clears stats.
func (b *Battery) Reset() {
	b.Charge = 0
	b.TotalThroughputKWh = 0
}
