package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every configuration invariant violation.
var ErrInvalid = errors.New("invalid configuration")

// Params is the fixed set of named simulation parameters.
// Units: hours for times, kW for power, kWh for energy.
type Params struct {
	TimeStep float64 `yaml:"time_step_h" json:"time_step_h"`

	BatteryCapacity     float64 `yaml:"battery_capacity_kwh" json:"battery_capacity_kwh"`
	ChargeRate          float64 `yaml:"charge_rate_kw" json:"charge_rate_kw"`
	DischargeRate       float64 `yaml:"discharge_rate_kw" json:"discharge_rate_kw"`
	ChargeEfficiency    float64 `yaml:"charge_efficiency" json:"charge_efficiency"`
	DischargeEfficiency float64 `yaml:"discharge_efficiency" json:"discharge_efficiency"`
	DischargeThreshold  float64 `yaml:"discharge_threshold_kw" json:"discharge_threshold_kw"`
	ChargeThreshold     float64 `yaml:"charge_threshold_kw" json:"charge_threshold_kw"`

	FlexChange   float64 `yaml:"flex_change" json:"flex_change"`
	FlexDuration float64 `yaml:"flex_duration_h" json:"flex_duration_h"`

	BaseDemand    float64 `yaml:"base_demand_kw" json:"base_demand_kw"`
	MaxGeneration float64 `yaml:"max_generation_kw" json:"max_generation_kw"`
	SunHours      float64 `yaml:"sun_hours" json:"sun_hours"`
	TimeShift     float64 `yaml:"time_shift_h" json:"time_shift_h"`

	FPS          float64 `yaml:"fps" json:"fps"`
	HistoryHours float64 `yaml:"history_h" json:"history_h"`

	// Price curve bounds used by the cost estimate.
	HighEnergyPrice float64 `yaml:"high_energy_price" json:"high_energy_price"`
	LowEnergyPrice  float64 `yaml:"low_energy_price" json:"low_energy_price"`

	// Seed for the noise source. Zero picks a time-based seed at startup.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// Default returns the canonical parameter set.
func Default() Params {
	return Params{
		TimeStep: 0.5,

		BatteryCapacity:     180,
		ChargeRate:          30,
		DischargeRate:       35,
		ChargeEfficiency:    0.9,
		DischargeEfficiency: 0.9,
		DischargeThreshold:  -35,
		ChargeThreshold:     10,

		FlexChange:   0.33,
		FlexDuration: 12,

		BaseDemand:    50,
		MaxGeneration: 130,
		SunHours:      14,
		TimeShift:     7,

		FPS:          8,
		HistoryHours: 7 * 24,

		HighEnergyPrice: 500,
		LowEnergyPrice:  500,
	}
}

// LoadOrDefault loads path, or validates Default when path is empty.
func LoadOrDefault(path string) (Params, error) {
	if path == "" {
		p := Default()
		return p, p.Validate()
	}
	return Load(path)
}

// Load reads a YAML file, overlays it on Default and validates the result.
func Load(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse overlays YAML content on Default and validates the result.
func Parse(raw []byte) (Params, error) {
	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Params{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks every invariant and reports all violations at once.
func (p Params) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(p.TimeStep > 0, "time_step_h must be > 0, got %g", p.TimeStep)
	check(p.TimeStep <= 24, "time_step_h must be <= 24, got %g", p.TimeStep)
	check(p.BatteryCapacity > 0, "battery_capacity_kwh must be > 0, got %g", p.BatteryCapacity)
	check(p.ChargeRate >= 0, "charge_rate_kw must be >= 0, got %g", p.ChargeRate)
	check(p.DischargeRate >= 0, "discharge_rate_kw must be >= 0, got %g", p.DischargeRate)
	check(p.ChargeEfficiency > 0 && p.ChargeEfficiency <= 1,
		"charge_efficiency must be in (0, 1], got %g", p.ChargeEfficiency)
	check(p.DischargeEfficiency > 0 && p.DischargeEfficiency <= 1,
		"discharge_efficiency must be in (0, 1], got %g", p.DischargeEfficiency)
	check(p.DischargeThreshold < p.ChargeThreshold,
		"discharge_threshold_kw (%g) must be < charge_threshold_kw (%g)", p.DischargeThreshold, p.ChargeThreshold)
	check(p.FlexChange >= 0 && p.FlexChange <= 1, "flex_change must be in [0, 1], got %g", p.FlexChange)
	check(p.FlexDuration > 0, "flex_duration_h must be > 0, got %g", p.FlexDuration)
	check(p.BaseDemand >= 0, "base_demand_kw must be >= 0, got %g", p.BaseDemand)
	check(p.MaxGeneration >= 0, "max_generation_kw must be >= 0, got %g", p.MaxGeneration)
	check(p.SunHours > 0, "sun_hours must be > 0, got %g", p.SunHours)
	check(p.FPS > 0, "fps must be > 0, got %g", p.FPS)
	check(p.HistoryHours >= p.TimeStep, "history_h must cover at least one step, got %g", p.HistoryHours)
	check(p.HighEnergyPrice >= 0, "high_energy_price must be >= 0, got %g", p.HighEnergyPrice)
	check(p.LowEnergyPrice >= 0, "low_energy_price must be >= 0, got %g", p.LowEnergyPrice)

	return errors.Join(errs...)
}

// MaxPoints is the history window length in ticks.
func (p Params) MaxPoints() int {
	return int(p.HistoryHours / p.TimeStep)
}

// DaySamples is the number of ticks in one simulated day.
func (p Params) DaySamples() int {
	n := int(math.Round(24 / p.TimeStep))
	if n < 1 {
		n = 1
	}
	return n
}

// EffectiveSeed returns Seed, or a time-based seed when Seed is zero.
func (p Params) EffectiveSeed() uint64 {
	if p.Seed != 0 {
		return p.Seed
	}
	return uint64(time.Now().UnixNano())
}
