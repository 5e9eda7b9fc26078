package realtime

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/pkg/metrics"
)

// ConnState is the lifecycle state of a connection.
type ConnState int32

const (
	// StateAccepted: transport is up, connection:established sent, only
	// user:join is honored.
	StateAccepted ConnState = iota

	// StateIdentified: user:join was accepted; identity is bound.
	StateIdentified

	// StateLive: fully joined, all messages honored.
	StateLive

	// StateDraining: disconnect in progress, presence being released.
	StateDraining

	// StateClosed: transport is gone.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateIdentified:
		return "identified"
	case StateLive:
		return "live"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	// DefaultPingInterval is how often the server pings each connection.
	DefaultPingInterval = 25 * time.Second

	// DefaultPingTimeout is how long a connection may stay silent before
	// it is dropped.
	DefaultPingTimeout = 60 * time.Second

	// sendQueueSize bounds the per-connection outbound queue. A full
	// queue drops frames rather than blocking broadcasts.
	sendQueueSize = 64

	maxMessageSize = 1 << 20 // 1MB
)

// Envelope is the inbound message framing: {name, payload, ack?}. The
// payload stays raw until the dispatcher knows the expected shape.
type Envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ack     string          `json:"ack,omitempty"`
}

// frame is the outbound counterpart of Envelope.
type frame struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
	Ack     string `json:"ack,omitempty"`
}

// Conn is one WebSocket connection. Reads happen on a single goroutine
// (ReadLoop); writes are funneled through the send queue to the write
// goroutine (WriteLoop), which also owns pings.
type Conn struct {
	ID string

	ws    *websocket.Conn
	send  chan frame
	state atomic.Int32

	mu       sync.RWMutex
	userID   string
	username string

	pingInterval time.Duration
	pingTimeout  time.Duration

	metrics metrics.RealtimeMetrics

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn wraps an upgraded WebSocket. Non-positive timeouts select the
// defaults. Metrics may be nil.
func NewConn(id string, ws *websocket.Conn, pingInterval, pingTimeout time.Duration, m metrics.RealtimeMetrics) *Conn {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	return &Conn{
		ID:           id,
		ws:           ws,
		send:         make(chan frame, sendQueueSize),
		pingInterval: pingInterval,
		pingTimeout:  pingTimeout,
		metrics:      m,
		done:         make(chan struct{}),
	}
}

// State returns the connection's lifecycle state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

// SetState advances the lifecycle state.
func (c *Conn) SetState(s ConnState) {
	c.state.Store(int32(s))
}

// Identify binds the user identity after a successful user:join.
func (c *Conn) Identify(userID, username string) {
	c.mu.Lock()
	c.userID = userID
	c.username = username
	c.mu.Unlock()
}

// Identity returns the bound (userID, username), empty before join.
func (c *Conn) Identity() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.username
}

// Enqueue queues a frame for delivery. It never blocks: when the send
// queue is full the frame is dropped and false is returned. A slow
// consumer loses frames rather than stalling the broadcaster.
func (c *Conn) Enqueue(name string, payload any) bool {
	return c.enqueue(frame{Name: name, Payload: payload})
}

// Reply queues a frame carrying the correlation id of the request it
// answers.
func (c *Conn) Reply(name string, payload any, ack string) bool {
	return c.enqueue(frame{Name: name, Payload: payload, Ack: ack})
}

func (c *Conn) enqueue(f frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- f:
		if c.metrics != nil {
			c.metrics.RecordOutbound(f.Name)
		}
		return true
	default:
		if c.metrics != nil {
			c.metrics.RecordDropped()
		}
		logger.Warn("send queue full, dropping frame",
			logger.KeyConnectionID, c.ID,
			logger.KeyEnvelope, f.Name,
		)
		return false
	}
}

// ReadLoop reads envelopes and hands them to the dispatcher in arrival
// order. It returns when the peer disconnects or stays silent past the
// ping timeout. The caller runs the disconnect handling afterwards.
func (c *Conn) ReadLoop(handle func(*Conn, Envelope)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pingTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pingTimeout))
	})

	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("connection read failed",
					logger.KeyConnectionID, c.ID,
					logger.KeyError, err,
				)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.pingTimeout))

		if c.metrics != nil {
			c.metrics.RecordInbound(env.Name)
		}
		handle(c, env)
	}
}

// WriteLoop drains the send queue and emits pings. It owns all writes
// to the underlying socket.
func (c *Conn) WriteLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close tears down the transport. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.SetState(StateClosed)
		close(c.done)
		_ = c.ws.Close()
	})
}
