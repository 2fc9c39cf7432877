package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_Active(t *testing.T) {
	s := Schedule{PeriodDays: 14, ActiveDays: 7}

	assert.True(t, s.Active(0))
	assert.True(t, s.Active(6*24+23.5))
	assert.False(t, s.Active(7*24))
	assert.False(t, s.Active(13*24+12))
	assert.True(t, s.Active(14*24))

	assert.False(t, Schedule{}.Active(0))
	assert.False(t, Schedule{PeriodDays: 7}.Active(0))
}

func TestAutopilot_FlexAtHour(t *testing.T) {
	a := &Autopilot{FlexHour: 6, Flex: Schedule{PeriodDays: 14, ActiveDays: 7}}

	assert.Empty(t, a.Commands(5.5, 0.5, false))
	assert.Equal(t, []Command{CommandTriggerFlex}, a.Commands(6, 0.5, false))
	assert.Empty(t, a.Commands(6.5, 0.5, false))
	assert.Equal(t, []Command{CommandTriggerFlex}, a.Commands(24+6, 0.5, false))
	// off week
	assert.Empty(t, a.Commands(8*24+6, 0.5, false))
}

func TestAutopilot_LockFollowsSchedule(t *testing.T) {
	a := &Autopilot{Lock: Schedule{PeriodDays: 2, ActiveDays: 1}}

	// day 0 wants the lock engaged
	assert.Equal(t, []Command{CommandToggleLock}, a.Commands(0, 0.5, false))
	assert.Empty(t, a.Commands(0.5, 0.5, true))
	// day 1 wants it released
	assert.Equal(t, []Command{CommandToggleLock}, a.Commands(24, 0.5, true))
	assert.Empty(t, a.Commands(24.5, 0.5, false))
}

func TestAutopilot_Disabled(t *testing.T) {
	a := &Autopilot{}
	for h := 0.0; h < 48; h += 0.5 {
		assert.Empty(t, a.Commands(h, 0.5, false))
		assert.Empty(t, a.Commands(h, 0.5, true))
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "toggle_lock", CommandToggleLock.String())
	assert.Equal(t, "trigger_flex", CommandTriggerFlex.String())
	assert.Equal(t, "command(9)", Command(9).String())
}

func TestDefaultAutopilot(t *testing.T) {
	a := DefaultAutopilot()

	// week 1: locked, flex at 06:00
	assert.Equal(t, []Command{CommandToggleLock, CommandTriggerFlex}, a.Commands(6, 0.5, false))
	// week 2: locked, no flex
	assert.Empty(t, a.Commands(7*24+6, 0.5, true))
	// week 3: unlocked, flex again
	assert.Equal(t, []Command{CommandTriggerFlex}, a.Commands(14*24+6, 0.5, false))
	assert.Equal(t, []Command{CommandToggleLock}, a.Commands(14*24, 0.5, true))
}
