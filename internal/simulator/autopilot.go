package simulator

import (
	"math"
)

// Schedule selects the first ActiveDays of every PeriodDays-day period,
// counted from the start of the run. A zero period never matches.
type Schedule struct {
	PeriodDays int `json:"period_days"`
	ActiveDays int `json:"active_days"`
}

// Enabled reports whether the schedule selects anything.
func (s Schedule) Enabled() bool {
	return s.PeriodDays > 0 && s.ActiveDays > 0
}

// Active reports whether the simulated hour falls on a selected day.
func (s Schedule) Active(timeClock float64) bool {
	if !s.Enabled() {
		return false
	}
	day := int(math.Floor(timeClock / 24))
	return day%s.PeriodDays < s.ActiveDays
}

// Autopilot issues commands on a fixed schedule for unattended runs.
// Its commands go through the same queue as external input.
type Autopilot struct {
	// FlexHour is the hour of day at which flex is triggered on Flex days.
	FlexHour float64  `json:"flex_hour"`
	Flex     Schedule `json:"flex"`
	// Lock holds the BESS lock engaged on selected days and released otherwise.
	Lock Schedule `json:"lock"`
}

// DefaultAutopilot triggers flex at 06:00 on the first week of every
// fortnight and locks the BESS for the first two weeks of every four, so a
// four-week run fills every analysis cohort.
func DefaultAutopilot() *Autopilot {
	return &Autopilot{
		FlexHour: 6,
		Flex:     Schedule{PeriodDays: 14, ActiveDays: 7},
		Lock:     Schedule{PeriodDays: 28, ActiveDays: 14},
	}
}

// Commands returns the commands due at the start of the tick at timeClock.
func (a *Autopilot) Commands(timeClock, dt float64, locked bool) []Command {
	var cmds []Command
	if a.Lock.Enabled() && a.Lock.Active(timeClock) != locked {
		cmds = append(cmds, CommandToggleLock)
	}
	if a.Flex.Active(timeClock) {
		tod := math.Mod(timeClock, 24)
		if tod >= a.FlexHour-timerEpsilon && tod < a.FlexHour+dt-timerEpsilon {
			cmds = append(cmds, CommandTriggerFlex)
		}
	}
	return cmds
}
