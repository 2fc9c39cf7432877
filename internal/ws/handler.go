package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"grid_balance_simulator/internal/simulator"
)

// maxStepsPerMessage bounds a single sim:step request.
const maxStepsPerMessage = 10000

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes messages to the engine.
type Handler struct {
	hub    *Hub
	engine *simulator.Engine
}

func NewHandler(hub *Hub, engine *simulator.Engine) *Handler {
	return &Handler{hub: hub, engine: engine}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade")
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	// Queue the initial messages before registering so they precede broadcasts.
	h.send(client, TypeDataLoaded, DataLoadedFromParams(h.engine.Params()))
	h.send(client, TypeSimState, SimStateFromEngine(h.engine.State()))
	h.send(client, TypeSimTick, TickFromEngine(h.engine.Snapshot(), h.engine.History()))

	h.hub.Register(client)
	go client.writePump()

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read")
			}
			return
		}

		h.handleMessage(msg)
	}
}

func (h *Handler) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Warn().Err(err).Msg("invalid message")
		return
	}

	switch env.Type {
	case TypeSimStart:
		h.engine.Start()

	case TypeSimPause:
		h.engine.Pause()

	case TypeSimSetSpeed:
		var p SetSpeedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn().Err(err).Msg("invalid set_speed payload")
			return
		}
		h.engine.SetFPS(p.FPS)

	case TypeSimStep:
		p := StepPayload{Count: 1}
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				log.Warn().Err(err).Msg("invalid step payload")
				return
			}
		}
		if p.Count < 1 || p.Count > maxStepsPerMessage {
			log.Warn().Int("count", p.Count).Msg("step count out of range")
			return
		}
		if h.engine.State().Running {
			log.Warn().Msg("step ignored while running")
			return
		}
		h.engine.Run(p.Count)

	case TypeSimReset:
		h.engine.Pause()
		h.engine.Reset()

	case TypeBESSToggleLock:
		h.engine.ToggleLock()

	case TypeFlexTrigger:
		h.engine.TriggerFlex()

	default:
		log.Warn().Str("type", env.Type).Msg("unknown message type")
	}
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("creating message")
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
