// Package signal is the WebSocket edge of the coordinator: one persistent,
// bidirectional connection per client, JSON envelopes discriminated by a
// "type" field. It parses requests and surfaces errors; all state and
// fan-out decisions belong to the coordinator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/app/orch"
	"github.com/avolkov/peerpad/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Coord   *orch.Coordinator
	Limiter *JoinRateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewSignalWSController(coord *orch.Coordinator, readLimit int64, pingPeriod time.Duration) *SignalWSController {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &SignalWSController{
		Coord:      coord,
		Limiter:    NewJoinRateLimiter(10, time.Minute),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

// WsSignalConn adapts a gorilla websocket to core.SignalConnection. Sends
// go through a buffered channel; a full buffer reports backpressure rather
// than blocking the caller.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	user := ctl.Coord.Registry.GetOrCreateUser(sid)
	sess := core.NewMemberSession(user, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry.BindSignal(sid, sess, cancel)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new ws connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
