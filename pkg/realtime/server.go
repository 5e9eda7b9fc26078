package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/pkg/editor"
	"github.com/tesseralab/tessera/pkg/metrics"
)

// Server-recognized inbound and server-emitted outbound message names.
const (
	MsgConnectionEstablished = "connection:established"
	MsgUserJoin              = "user:join"
	MsgChannelJoin           = "channel:join"
	MsgChannelLeave          = "channel:leave"
	MsgEventPublish          = "event:publish"
	MsgUserStatus            = "user:status"
	MsgUsersList             = "users:list"
	MsgRealtimeEvent         = "realtime:event"
	MsgUsersActive           = "users:active"
	MsgUserStatusChanged     = "user:status:changed"
)

// Options configures the realtime server.
type Options struct {
	// Port is the HTTP listen port.
	Port int

	// FrontendOrigin restricts WebSocket upgrades to one origin. Empty
	// allows any origin.
	FrontendOrigin string

	// PingInterval and PingTimeout tune connection liveness. Zero values
	// select the defaults (25s / 60s).
	PingInterval time.Duration
	PingTimeout  time.Duration

	// MaxEventLog bounds the replay log. Zero selects the default (1000).
	MaxEventLog int

	// ShutdownTimeout bounds graceful shutdown. Zero selects 10s.
	ShutdownTimeout time.Duration
}

// Server is the realtime event bus: it accepts WebSocket connections,
// walks each through the accepted/identified/live lifecycle, routes
// channel-scoped broadcasts, and feeds the replay log.
type Server struct {
	opts Options

	presence *PresenceRegistry
	router   *Router
	log      *EventLog
	sessions *editor.SessionRegistry

	upgrader websocket.Upgrader
	metrics  metrics.RealtimeMetrics

	now func() time.Time
}

// NewServer creates a realtime server. The session registry is used to
// end edit sessions on disconnect and may be nil. Metrics may be nil.
func NewServer(opts Options, sessions *editor.SessionRegistry, m metrics.RealtimeMetrics) *Server {
	s := &Server{
		opts:     opts,
		presence: NewPresenceRegistry(m),
		router:   NewRouter(m),
		log:      NewEventLog(opts.MaxEventLog, m),
		sessions: sessions,
		metrics:  m,
		now:      time.Now,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Presence exposes the presence registry.
func (s *Server) Presence() *PresenceRegistry { return s.presence }

// Router exposes the channel router.
func (s *Server) Router() *Router { return s.router }

// Log exposes the event log.
func (s *Server) Log() *EventLog { return s.log }

// Handler returns the HTTP surface: the WebSocket endpoint plus health
// probes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	return r
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.opts.Port),
		Handler:     s.Handler(),
		ReadTimeout: 0, // WebSocket connections are long-lived
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("realtime server listening", "port", s.opts.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("realtime server failed: %w", err)
	case <-ctx.Done():
		timeout := s.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Publish appends an event to the replay log and broadcasts it: on the
// event's domain channel when set, globally otherwise. Missing ID and
// timestamp are stamped here. Returns the number of receivers.
func (s *Server) Publish(evt *Event) int {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = s.now()
	}

	s.log.Append(evt)

	channel := GlobalChannel
	if evt.Channel != "" {
		channel = DomainChannel(evt.Channel)
	}
	n := s.router.Broadcast(channel, MsgRealtimeEvent, evt)

	logger.Debug("event published",
		logger.KeyEventType, string(evt.Type),
		logger.KeyChannel, channel,
		logger.KeyReceivers, n,
	)
	return n
}

// EventsSince returns events newer than t, for reconnect catch-up.
func (s *Server) EventsSince(t time.Time) []*Event {
	return s.log.Since(t)
}

// ActiveUsers returns the current presence snapshot.
func (s *Server) ActiveUsers() []PresenceRecord {
	return s.presence.List()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.opts.FrontendOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == s.opts.FrontendOrigin
}

// handleWS upgrades the transport and runs the connection to
// completion: established frame, read loop, then disconnect handling.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed",
			logger.KeyRemoteAddr, r.RemoteAddr,
			logger.KeyError, err,
		)
		return
	}

	conn := NewConn(uuid.NewString(), ws, s.opts.PingInterval, s.opts.PingTimeout, s.metrics)
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
	}
	logger.Info("connection accepted",
		logger.KeyConnectionID, conn.ID,
		logger.KeyRemoteAddr, r.RemoteAddr,
	)

	s.router.Register(conn)
	go conn.WriteLoop()

	conn.Enqueue(MsgConnectionEstablished, map[string]any{"connectionId": conn.ID})

	conn.ReadLoop(s.handleMessage)

	s.handleDisconnect(conn)
	conn.Close()
	if s.metrics != nil {
		s.metrics.ConnectionClosed()
	}
}

// handleMessage dispatches one inbound envelope. Messages from a single
// connection arrive here in order. Protocol violations (messages before
// user:join, malformed payloads) are dropped with no reply; the
// connection stays up.
func (s *Server) handleMessage(c *Conn, env Envelope) {
	if env.Name == MsgUserJoin {
		s.handleUserJoin(c, env)
		return
	}

	if c.State() != StateLive {
		logger.Debug("message before join ignored",
			logger.KeyConnectionID, c.ID,
			logger.KeyEnvelope, env.Name,
		)
		return
	}

	switch env.Name {
	case MsgChannelJoin:
		if domain, ok := decodeString(env.Payload); ok && domain != "" {
			s.router.Join(c, DomainChannel(domain))
		}
	case MsgChannelLeave:
		if domain, ok := decodeString(env.Payload); ok && domain != "" {
			s.router.Leave(c, DomainChannel(domain))
		}
	case MsgEventPublish:
		s.handleEventPublish(c, env)
	case MsgUserStatus:
		s.handleUserStatus(c, env)
	case MsgUsersList:
		// Reply-only: without a correlation id there is nowhere to
		// answer.
		if env.Ack != "" {
			c.Reply(MsgUsersActive, s.presence.List(), env.Ack)
		}
	default:
		logger.Debug("unknown message ignored",
			logger.KeyConnectionID, c.ID,
			logger.KeyEnvelope, env.Name,
		)
	}
}

func (s *Server) handleUserJoin(c *Conn, env Envelope) {
	// A second join on an already-bound connection is a protocol
	// violation; identity is fixed for the connection lifetime.
	if c.State() != StateAccepted {
		return
	}

	var payload struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.UserID == "" {
		// Malformed join leaves the connection in Accepted awaiting
		// another attempt.
		logger.Debug("malformed user:join ignored", logger.KeyConnectionID, c.ID)
		return
	}

	c.Identify(payload.UserID, payload.Username)
	c.SetState(StateIdentified)

	rec, _ := s.presence.Join(payload.UserID, payload.Username)
	c.SetState(StateLive)

	s.Publish(&Event{
		Type:   EventUserJoined,
		UserID: payload.UserID,
		Data: map[string]any{
			"username": payload.Username,
			"devices":  rec.ConnectedDevices,
		},
	})

	// Initial presence snapshot goes only to the joining connection.
	c.Enqueue(MsgUsersActive, s.presence.List())

	logger.Info("user joined",
		logger.KeyConnectionID, c.ID,
		logger.KeyUserID, payload.UserID,
		logger.KeyUsername, payload.Username,
	)
}

func (s *Server) handleEventPublish(c *Conn, env Envelope) {
	var evt Event
	if err := json.Unmarshal(env.Payload, &evt); err != nil || evt.Type == "" {
		logger.Debug("malformed event:publish ignored", logger.KeyConnectionID, c.ID)
		return
	}

	// The bound identity and server clock are authoritative, whatever
	// the client claimed.
	userID, _ := c.Identity()
	evt.ID = uuid.NewString()
	evt.UserID = userID
	evt.Timestamp = s.now()

	s.Publish(&evt)
}

func (s *Server) handleUserStatus(c *Conn, env Envelope) {
	status, ok := decodeString(env.Payload)
	if !ok {
		return
	}
	switch Status(status) {
	case StatusOnline, StatusIdle, StatusOffline:
	default:
		return
	}

	userID, _ := c.Identity()
	if !s.presence.SetStatus(userID, Status(status)) {
		return
	}

	s.log.Append(&Event{
		ID:        uuid.NewString(),
		Type:      EventUserStatusChanged,
		UserID:    userID,
		Timestamp: s.now(),
		Data:      map[string]any{"status": status},
	})
	s.router.Broadcast(GlobalChannel, MsgUserStatusChanged, map[string]any{
		"userId": userID,
		"status": status,
	})
}

// handleDisconnect drains a departing connection: membership teardown,
// presence release, user:left fan-out when the last device is gone, and
// edit session termination.
func (s *Server) handleDisconnect(c *Conn) {
	c.SetState(StateDraining)
	s.router.Unregister(c)

	userID, username := c.Identity()
	if userID != "" {
		if res := s.presence.Leave(userID); res.Departed {
			s.Publish(&Event{
				Type:   EventUserLeft,
				UserID: userID,
				Data:   map[string]any{"username": username},
			})
		}
	}

	if s.sessions != nil {
		s.sessions.EndSession(c.ID)
	}

	logger.Info("connection closed",
		logger.KeyConnectionID, c.ID,
		logger.KeyUserID, userID,
	)
}

// decodeString unwraps a JSON string payload.
func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
