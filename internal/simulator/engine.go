package simulator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/config"
	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/profile"
	"grid_balance_simulator/internal/store"
)

// State represents the current run state.
type State struct {
	RunID     string  `json:"run_id"`
	Running   bool    `json:"running"`
	FPS       float64 `json:"fps"`
	Ticks     int     `json:"ticks"`
	TimeClock float64 `json:"time_clock"`
}

// SimState is the mutable simulation state owned by the engine.
type SimState struct {
	TimeClock          float64 `json:"time_clock"`
	BatteryCharge      float64 `json:"battery_charge"`
	ChargingLocked     bool    `json:"charging_locked"`
	DemandModification float64 `json:"demand_modification"`
	ModificationTimer  float64 `json:"modification_timer"`
}

// Snapshot is the read-only view handed to the display after each tick.
type Snapshot struct {
	Tick                int             `json:"tick"`
	TimeClock           float64         `json:"time_clock"`
	BatteryCharge       float64         `json:"battery_charge"`
	GridDemand          float64         `json:"grid_demand"`
	RenewableGeneration float64         `json:"renewable_generation"`
	GridBalance         float64         `json:"grid_balance"`
	Decision            model.Action    `json:"decision"`
	ModificationTimer   float64         `json:"modification_timer"`
	DemandModification  float64         `json:"demand_modification"`
	ChargingLocked      bool            `json:"charging_locked"`
	FlexPhase           model.FlexPhase `json:"flex_phase"`
	BatteryCycles       float64         `json:"battery_cycles"`
}

// Command is an external input applied at the top of the next tick.
type Command int

const (
	CommandToggleLock Command = iota + 1
	CommandTriggerFlex
)

func (c Command) String() string {
	switch c {
	case CommandToggleLock:
		return "toggle_lock"
	case CommandTriggerFlex:
		return "trigger_flex"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Callback receives simulation events.
type Callback interface {
	OnState(state State)
	OnTick(snapshot Snapshot, window []model.TickRecord)
}

// Callbacks fans events out to several consumers in order.
type Callbacks []Callback

func (cs Callbacks) OnState(s State) {
	for _, c := range cs {
		c.OnState(s)
	}
}

func (cs Callbacks) OnTick(s Snapshot, window []model.TickRecord) {
	for _, c := range cs {
		c.OnTick(s, window)
	}
}

type nopCallback struct{}

func (nopCallback) OnState(State)                       {}
func (nopCallback) OnTick(Snapshot, []model.TickRecord) {}

// Engine advances the micro-grid in fixed steps, one tick per frame.
type Engine struct {
	mu       sync.Mutex
	params   config.Params
	gen      *profile.Generator
	callback Callback

	runID     string
	battery   *Battery
	flex      *Flex
	locked    bool
	ticks     int
	timeClock float64
	last      Snapshot

	pending   []Command
	autopilot *Autopilot

	history *store.History
	archive *store.Archive

	running bool
	fps     float64
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New validates the parameters and creates an engine at time zero with an
// empty, unlocked battery and an inactive flex modifier.
func New(p config.Params, gen *profile.Generator, cb Callback) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if cb == nil {
		cb = nopCallback{}
	}
	e := &Engine{
		params:   p,
		gen:      gen,
		callback: cb,
		battery:  NewBattery(BatteryConfigFrom(p)),
		flex:     NewFlex(p.FlexChange, p.FlexDuration),
		history:  store.NewHistory(p.MaxPoints()),
		archive:  store.NewArchive(),
		fps:      p.FPS,
	}
	e.resetLocked()
	return e, nil
}

// Params returns the run parameters.
func (e *Engine) Params() config.Params {
	return e.params
}

// State returns the current run state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		RunID:     e.runID,
		Running:   e.running,
		FPS:       e.fps,
		Ticks:     e.ticks,
		TimeClock: e.timeClock,
	}
}

// SimState returns the simulation state at the current tick boundary.
func (e *Engine) SimState() SimState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SimState{
		TimeClock:          e.timeClock,
		BatteryCharge:      e.battery.Charge,
		ChargingLocked:     e.locked,
		DemandModification: e.flex.Modifier(),
		ModificationTimer:  e.flex.Timer(),
	}
}

// Snapshot returns the view produced by the most recent tick.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// History returns a copy of the rolling display window.
func (e *Engine) History() []model.TickRecord {
	return e.history.Window()
}

// Archive returns a copy of every record of the run.
func (e *Engine) Archive() []model.TickRecord {
	return e.archive.Snapshot()
}

// ToggleLock queues a BESS lock toggle for the next tick.
func (e *Engine) ToggleLock() {
	e.enqueue(CommandToggleLock)
}

// TriggerFlex queues a flex trigger for the next tick. It has no effect if
// the modifier is still running when the tick starts.
func (e *Engine) TriggerFlex() {
	e.enqueue(CommandTriggerFlex)
}

func (e *Engine) enqueue(c Command) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, c)
}

// SetAutopilot installs a command schedule. Pass nil to remove it.
func (e *Engine) SetAutopilot(a *Autopilot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autopilot = a
}

// SetFPS sets the tick rate of the paced loop.
func (e *Engine) SetFPS(fps float64) {
	if fps < 0.1 {
		fps = 0.1
	}
	if fps > 1000 {
		fps = 1000
	}

	e.mu.Lock()
	e.fps = fps
	e.mu.Unlock()

	e.broadcastState()
}

// Reset discards the run and starts a new one at time zero.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.mu.Unlock()

	e.broadcastState()
}

func (e *Engine) resetLocked() {
	e.runID = uuid.NewString()
	e.battery.Reset()
	e.flex.Reset()
	e.locked = false
	e.ticks = 0
	e.timeClock = 0
	e.pending = nil
	e.history.Reset()
	e.archive.Reset()
	e.last = Snapshot{
		DemandModification: e.flex.Modifier(),
		Decision:            model.ActionWaiting,
		FlexPhase:           e.flex.Phase(),
	}
}

// Step runs exactly one tick and notifies the callback.
// Useful for deterministic testing. Does not require Start().
func (e *Engine) Step() Snapshot {
	e.mu.Lock()
	snap := e.tick()
	window := e.history.Window()
	cb := e.callback
	e.mu.Unlock()

	cb.OnTick(snap, window)
	return snap
}

// Run steps n ticks without pacing.
func (e *Engine) Run(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

// tick advances the simulation by one step. Must be called with mu held.
func (e *Engine) tick() Snapshot {
	dt := e.params.TimeStep

	if e.autopilot != nil {
		e.pending = append(e.pending, e.autopilot.Commands(e.timeClock, dt, e.locked)...)
	}
	for _, c := range e.pending {
		e.apply(c)
	}
	e.pending = e.pending[:0]

	timeOfDay := math.Mod(e.timeClock, 24)
	generation := e.gen.Renewable(timeOfDay)
	demand := e.gen.Demand(timeOfDay, e.flex.Modifier())

	result := e.battery.Process(generation, demand, e.locked, dt)

	if e.flex.Active() {
		e.flex.Advance(dt)
	}

	balance := generation - demand + result.Contribution

	record := model.TickRecord{
		TimeOfDay:     timeOfDay,
		Generation:    generation,
		BatteryCharge: result.Charge,
		Demand:        demand,
		Balance:       balance,
		BatteryLocked: e.locked,
		FlexActive:    e.flex.Active(),
	}
	e.history.Append(record)
	e.archive.Append(record)

	e.last = Snapshot{
		Tick:                e.ticks,
		TimeClock:           e.timeClock,
		BatteryCharge:       result.Charge,
		GridDemand:          demand,
		RenewableGeneration: generation,
		GridBalance:         balance,
		Decision:            result.Action,
		ModificationTimer:   e.flex.Timer(),
		DemandModification:  e.flex.Modifier(),
		ChargingLocked:      e.locked,
		FlexPhase:           e.flex.Phase(),
		BatteryCycles:       e.battery.Cycles(),
	}

	// Derived from the tick count so long runs do not accumulate drift.
	e.ticks++
	e.timeClock = float64(e.ticks) * dt

	return e.last
}

// apply executes a queued command. Must be called with mu held.
func (e *Engine) apply(c Command) {
	switch c {
	case CommandToggleLock:
		e.locked = !e.locked
		log.Info().Str("run_id", e.runID).Bool("locked", e.locked).Float64("time_clock", e.timeClock).Msg("bess lock toggled")
	case CommandTriggerFlex:
		if e.flex.Trigger() {
			log.Info().Str("run_id", e.runID).Float64("time_clock", e.timeClock).Msg("flexibility service triggered")
		} else {
			log.Debug().Float64("timer", e.flex.Timer()).Msg("flexibility service already active, trigger ignored")
		}
	default:
		log.Warn().Stringer("command", c).Msg("unknown command")
	}
}

// Start begins the paced simulation loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	stop, done := e.stopCh, e.doneCh
	runID, fps := e.runID, e.fps
	e.mu.Unlock()

	log.Info().Str("run_id", runID).Float64("fps", fps).Msg("simulation started")
	e.broadcastState()
	go e.loop(stop, done)
}

// Pause stops the loop after the in-flight tick completes and waits for it.
// Must not be called from a callback.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()

	<-done
	st := e.State()
	log.Info().Str("run_id", st.RunID).Int("ticks", st.Ticks).Msg("simulation paused")
	e.broadcastState()
}

func (e *Engine) tickInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(float64(time.Second) / e.fps)
}

func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(e.tickInterval())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			select {
			case <-stop:
				return
			default:
			}
			e.Step()
			timer.Reset(e.tickInterval())
		}
	}
}

func (e *Engine) broadcastState() {
	e.mu.Lock()
	s := e.stateLocked()
	cb := e.callback
	e.mu.Unlock()
	cb.OnState(s)
}
