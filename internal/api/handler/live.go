package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/airwise/airwise/internal/api/models"
)

// Stream timing for live connections.
const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveInterval   = time.Second
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler streams the refresh state over a WebSocket so the dashboard
// countdown ticks without polling.
type LiveHandler struct {
	scheduler RefreshScheduler
	logger    zerolog.Logger
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(scheduler RefreshScheduler, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		scheduler: scheduler,
		logger:    logger.With().Str("component", "live").Logger(),
	}
}

// Stream handles GET /v1/air/live - upgrade and push a state frame once per
// second until the client goes away.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, done)
}

// readPump consumes frames from the peer. Clients send nothing meaningful;
// reading is what surfaces disconnects and keeps pong handling alive.
func (h *LiveHandler) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("live stream read error")
			}
			return
		}
	}
}

// writePump pushes a state frame every interval and pings on the usual
// cadence. It owns the connection close.
func (h *LiveHandler) writePump(conn *websocket.Conn, done chan struct{}) {
	stateTicker := time.NewTicker(liveInterval)
	pingTicker := time.NewTicker(livePingPeriod)
	defer func() {
		stateTicker.Stop()
		pingTicker.Stop()
		_ = conn.Close()
	}()

	// First frame immediately so clients do not wait out a full tick.
	if err := h.writeState(conn); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-stateTicker.C:
			if err := h.writeState(conn); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) writeState(conn *websocket.Conn) error {
	snap, ok := h.scheduler.Snapshot()
	payload, err := json.Marshal(models.NewLiveUpdate(h.scheduler.State(), snap, ok))
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
