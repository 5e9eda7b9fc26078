package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/pkg/metrics"
)

const (
	// DefaultSessionIdle is how long a session stays live without
	// activity. A session idle for exactly this duration counts as
	// expired.
	DefaultSessionIdle = 30 * time.Second

	// DefaultSweepInterval is how often the background reaper runs.
	DefaultSweepInterval = 10 * time.Second
)

// EditSession is a per-client editing context bound to one document.
type EditSession struct {
	SessionID      string    `json:"sessionId"`
	UserID         string    `json:"userId"`
	ClientID       string    `json:"clientId"`
	DocumentID     string    `json:"documentId"`
	StartTime      time.Time `json:"startTime"`
	LastActivity   time.Time `json:"lastActivity"`
	CursorPosition int       `json:"cursorPosition"`
	Active         bool      `json:"active"`
}

// SessionRegistry tracks edit sessions keyed by client ID.
//
// A session is live iff it is active and its last activity is strictly
// younger than the idle timeout. Ended sessions are retained (inactive)
// for audit until the reaper removes them.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*EditSession

	idle  time.Duration
	sweep time.Duration

	metrics metrics.EditorMetrics

	now func() time.Time
}

// NewSessionRegistry creates a session registry. Non-positive durations
// select the defaults (30s idle, 10s sweep). Metrics may be nil.
func NewSessionRegistry(idle, sweep time.Duration, m metrics.EditorMetrics) *SessionRegistry {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}
	return &SessionRegistry{
		sessions: make(map[string]*EditSession),
		idle:     idle,
		sweep:    sweep,
		metrics:  m,
		now:      time.Now,
	}
}

// CreateSession starts a session for (userID, clientID, documentID). Any
// prior session for the client is overwritten, terminating it implicitly.
// A reconnect with the same client ID therefore starts fresh.
func (r *SessionRegistry) CreateSession(userID, clientID, documentID string) EditSession {
	now := r.now()
	s := &EditSession{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		ClientID:     clientID,
		DocumentID:   documentID,
		StartTime:    now,
		LastActivity: now,
		Active:       true,
	}

	r.mu.Lock()
	r.sessions[clientID] = s
	r.mu.Unlock()

	logger.Debug("session created",
		logger.KeySessionID, s.SessionID,
		logger.KeyClientID, clientID,
		logger.KeyDocumentID, documentID,
		logger.KeyUserID, userID,
	)
	return *s
}

// UpdateCursor moves the client's cursor and refreshes its activity.
// Returns false when the client has no session.
func (r *SessionRegistry) UpdateCursor(clientID string, pos int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return false
	}
	s.CursorPosition = pos
	s.LastActivity = r.now()
	return true
}

// Touch refreshes the session's activity on any inbound traffic.
func (r *SessionRegistry) Touch(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return false
	}
	s.LastActivity = r.now()
	return true
}

// EndSession marks the client's session inactive. The record is retained
// for audit until the reaper removes it. Returns false when the client
// has no session.
func (r *SessionRegistry) EndSession(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return false
	}
	s.Active = false
	return true
}

// Get returns a copy of the client's session.
func (r *SessionRegistry) Get(clientID string) (EditSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return EditSession{}, false
	}
	return *s, true
}

// ActiveSessions returns copies of the live sessions for a document.
func (r *SessionRegistry) ActiveSessions(documentID string) []EditSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var out []EditSession
	for _, s := range r.sessions {
		if s.DocumentID != documentID {
			continue
		}
		if r.liveLocked(s, now) {
			out = append(out, *s)
		}
	}
	return out
}

// CleanupOldSessions removes sessions whose last activity is at least
// maxAge old, returning how many were removed. Designed to be invoked on
// a timer by the host; Run does exactly that.
func (r *SessionRegistry) CleanupOldSessions(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for clientID, s := range r.sessions {
		if now.Sub(s.LastActivity) >= maxAge {
			delete(r.sessions, clientID)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the configured interval until the
// context is cancelled.
func (r *SessionRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.CleanupOldSessions(r.idle); n > 0 {
				logger.Debug("reaped idle sessions", "count", n)
			}
			if r.metrics != nil {
				r.metrics.SetActiveSessions(r.LiveCount())
			}
		}
	}
}

// LiveCount returns the number of live sessions across all documents.
func (r *SessionRegistry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	n := 0
	for _, s := range r.sessions {
		if r.liveLocked(s, now) {
			n++
		}
	}
	return n
}

// liveLocked reports liveness; callers hold r.mu.
func (r *SessionRegistry) liveLocked(s *EditSession, now time.Time) bool {
	return s.Active && now.Sub(s.LastActivity) < r.idle
}
