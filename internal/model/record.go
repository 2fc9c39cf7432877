package model

// Action is the BESS controller decision for a tick.
// Values are stable; they appear in display payloads and CSV exports.
type Action string

const (
	ActionCharge    Action = "CHARGE"
	ActionDischarge Action = "DISCHARGE"
	ActionHold      Action = "HOLD"
	ActionWaiting   Action = "WAITING"
)

// FlexPhase is the phase of the demand-response modifier.
type FlexPhase string

const (
	FlexInactive FlexPhase = "inactive"
	FlexBoost    FlexPhase = "boost"
	FlexPayback  FlexPhase = "payback"
)

// Active reports whether the modifier is altering demand.
func (p FlexPhase) Active() bool {
	return p == FlexBoost || p == FlexPayback
}

// Series identifies one recorded time series of a tick.
type Series string

const (
	SeriesGeneration    Series = "generation"
	SeriesDemand        Series = "demand"
	SeriesBatteryCharge Series = "battery_charge"
	SeriesBalance       Series = "balance"
)

// SeriesInfo holds display name and unit for a series.
type SeriesInfo struct {
	Name string
	Unit string
}

// SeriesCatalog maps every plotted series to its display name and unit.
var SeriesCatalog = map[Series]SeriesInfo{
	SeriesGeneration:    {Name: "Renewable Generation", Unit: "kW"},
	SeriesDemand:        {Name: "Grid Demand", Unit: "kW"},
	SeriesBatteryCharge: {Name: "BESS Energy", Unit: "kWh"},
	SeriesBalance:       {Name: "Grid Balance", Unit: "kW"},
}

// TickRecord is the immutable outcome of one simulation tick.
type TickRecord struct {
	TimeOfDay     float64 `json:"time_of_day"`
	Generation    float64 `json:"generation"`
	BatteryCharge float64 `json:"battery_charge"`
	Demand        float64 `json:"demand"`
	Balance       float64 `json:"balance"`
	BatteryLocked bool    `json:"battery_locked"`
	FlexActive    bool    `json:"flex_active"`
}

// Value returns the record's value for a series.
func (r TickRecord) Value(s Series) float64 {
	switch s {
	case SeriesGeneration:
		return r.Generation
	case SeriesDemand:
		return r.Demand
	case SeriesBatteryCharge:
		return r.BatteryCharge
	case SeriesBalance:
		return r.Balance
	}
	return 0
}
