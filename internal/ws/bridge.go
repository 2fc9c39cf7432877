package ws

import (
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/model"
	"grid_balance_simulator/internal/simulator"
)

// Bridge implements simulator.Callback and broadcasts events to the WebSocket hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnState(s simulator.State) {
	msg, err := NewEnvelope(TypeSimState, SimStateFromEngine(s))
	if err != nil {
		log.Error().Err(err).Msg("marshaling sim state")
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnTick(s simulator.Snapshot, window []model.TickRecord) {
	if b.hub.ClientCount() == 0 {
		return
	}
	msg, err := NewEnvelope(TypeSimTick, TickFromEngine(s, window))
	if err != nil {
		log.Error().Err(err).Int("tick", s.Tick).Msg("marshaling tick")
		return
	}
	b.hub.Broadcast(msg)
}
