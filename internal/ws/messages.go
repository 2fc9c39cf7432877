package ws

import (
	"encoding/json"
	"math"
	"sort"

	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/simulator"
	"grid_balance_simulator/internal/store"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

type SetSpeedPayload struct {
	FPS float64 `json:"fps"`
}

type StepPayload struct {
	Count int `json:"count"`
}

// Server -> Client messages

type SimStatePayload struct {
	RunID     string  `json:"run_id"`
	Running   bool    `json:"running"`
	FPS       float64 `json:"fps"`
	Ticks     int     `json:"ticks"`
	TimeClock float64 `json:"time_clock"`
	Day       int     `json:"day"`
	TimeOfDay float64 `json:"time_of_day"`
}

type TickPayload struct {
	Snapshot simulator.Snapshot `json:"snapshot"`
	Window   []model.TickRecord `json:"window"`
	Scale    store.Scale        `json:"scale"`
}

type SeriesInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type ParamsInfo struct {
	TimeStepH          float64 `json:"time_step_h"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	HistoryH           float64 `json:"history_h"`
	MaxPoints          int     `json:"max_points"`
	FlexChange         float64 `json:"flex_change"`
	FlexDurationH      float64 `json:"flex_duration_h"`
}

type DataLoadedPayload struct {
	Series []SeriesInfo `json:"series"`
	Params ParamsInfo   `json:"params"`
}

// Message type constants
const (
	// Client -> Server
	TypeSimStart       = "sim:start"
	TypeSimPause       = "sim:pause"
	TypeSimSetSpeed    = "sim:set_speed"
	TypeSimStep        = "sim:step"
	TypeSimReset       = "sim:reset"
	TypeBESSToggleLock = "bess:toggle_lock"
	TypeFlexTrigger    = "flex:trigger"

	// Server -> Client
	TypeSimState   = "sim:state"
	TypeSimTick    = "sim:tick"
	TypeDataLoaded = "data:loaded"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func SimStateFromEngine(s simulator.State) SimStatePayload {
	return SimStatePayload{
		RunID:     s.RunID,
		Running:   s.Running,
		FPS:       s.FPS,
		Ticks:     s.Ticks,
		TimeClock: s.TimeClock,
		Day:       int(math.Floor(s.TimeClock / 24)),
		TimeOfDay: math.Mod(s.TimeClock, 24),
	}
}

func TickFromEngine(s simulator.Snapshot, window []model.TickRecord) TickPayload {
	if window == nil {
		window = []model.TickRecord{}
	}
	return TickPayload{
		Snapshot: s,
		Window:   window,
		Scale:    store.ScaleOf(window),
	}
}

func DataLoadedFromParams(p config.Params) DataLoadedPayload {
	series := make([]SeriesInfo, 0, len(model.SeriesCatalog))
	for id, info := range model.SeriesCatalog {
		series = append(series, SeriesInfo{ID: string(id), Name: info.Name, Unit: info.Unit})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].ID < series[j].ID })

	return DataLoadedPayload{
		Series: series,
		Params: ParamsInfo{
			TimeStepH:          p.TimeStep,
			BatteryCapacityKWh: p.BatteryCapacity,
			HistoryH:           p.HistoryHours,
			MaxPoints:          p.MaxPoints(),
			FlexChange:         p.FlexChange,
			FlexDurationH:      p.FlexDuration,
		},
	}
}
