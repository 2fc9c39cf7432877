package simulator

import (
	"grid_balance_simulator/internal/model"
)

// timerEpsilon absorbs float drift when the timer is decremented by
// steps that are not exact binary fractions.
const timerEpsilon = 1e-9

// Flex is the two-phase demand-response modifier: a boost of 1+change for
// the first half of the duration, then a payback of 1-change.
type Flex struct {
	change   float64
	duration float64

	phase model.FlexPhase
	timer float64
}

func NewFlex(change, duration float64) *Flex {
	return &Flex{
		change:   change,
		duration: duration,
		phase:    model.FlexInactive,
	}
}

// Trigger starts the boost phase. It is ignored while the timer runs.
func (f *Flex) Trigger() bool {
	if f.timer != 0 {
		return false
	}
	f.phase = model.FlexBoost
	f.timer = f.duration
	return true
}

// Advance decrements the timer by dt hours and moves between phases:
//
//	boost   -> payback  when timer <= duration/2
//	boost   -> inactive when timer <= 0
//	payback -> inactive when timer <= 0
func (f *Flex) Advance(dt float64) {
	if !f.phase.Active() {
		return
	}
	f.timer -= dt

	switch {
	case f.timer <= timerEpsilon:
		f.phase = model.FlexInactive
		f.timer = 0
	case f.phase == model.FlexBoost && f.timer <= f.duration/2+timerEpsilon:
		f.phase = model.FlexPayback
	}
}

// Modifier returns the demand multiplier of the current phase.
func (f *Flex) Modifier() float64 {
	switch f.phase {
	case model.FlexBoost:
		return 1 + f.change
	case model.FlexPayback:
		return 1 - f.change
	default:
		return 1
	}
}

func (f *Flex) Phase() model.FlexPhase { return f.phase }

// Timer returns the remaining hours; zero when inactive.
func (f *Flex) Timer() float64 { return f.timer }

// Active reports whether the modifier is running.
func (f *Flex) Active() bool { return f.phase.Active() }

// Reset deactivates the modifier.
func (f *Flex) Reset() {
	f.phase = model.FlexInactive
	f.timer = 0
}
