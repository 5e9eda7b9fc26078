package realtime

import (
	"sort"
	"sync"
	"time"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/pkg/metrics"
)

// Status is a user's advertised availability.
type Status string

const (
	StatusOnline  Status = "online"
	StatusIdle    Status = "idle"
	StatusOffline Status = "offline"
)

// PresenceRecord is the visible presence state for one user across all
// of their connected devices. A record exists iff ConnectedDevices > 0.
type PresenceRecord struct {
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	Status           Status    `json:"status"`
	LastSeen         time.Time `json:"lastSeen"`
	ConnectedDevices int       `json:"connectedDevices"`
}

// LeaveResult reports the outcome of a presence leave.
type LeaveResult struct {
	// Departed is true when the last device disconnected and the record
	// was removed. The host broadcasts user:left only in this case.
	Departed bool

	// Devices is the remaining device count.
	Devices int
}

// PresenceRegistry tracks which users are connected and on how many
// devices. Joins and leaves for the same user pair up: the record is
// removed only when every device has left.
type PresenceRegistry struct {
	mu      sync.RWMutex
	records map[string]*PresenceRecord

	metrics metrics.RealtimeMetrics

	now func() time.Time
}

// NewPresenceRegistry creates an empty presence registry. Metrics may
// be nil.
func NewPresenceRegistry(m metrics.RealtimeMetrics) *PresenceRegistry {
	return &PresenceRegistry{
		records: make(map[string]*PresenceRecord),
		metrics: m,
		now:     time.Now,
	}
}

// Join records a device connecting for the user. The first device
// creates the record; subsequent devices increment the count. Joining
// always refreshes LastSeen and forces status online. Returns the
// updated record and whether this was the user's first device.
func (r *PresenceRegistry) Join(userID, username string) (PresenceRecord, bool) {
	r.mu.Lock()

	rec, ok := r.records[userID]
	if !ok {
		rec = &PresenceRecord{
			UserID:   userID,
			Username: username,
		}
		r.records[userID] = rec
	}
	rec.ConnectedDevices++
	rec.Status = StatusOnline
	rec.LastSeen = r.now()
	out := *rec
	count := len(r.records)

	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SetPresence(count)
	}
	logger.Debug("presence join",
		logger.KeyUserID, userID,
		logger.KeyDevices, out.ConnectedDevices,
	)
	return out, out.ConnectedDevices == 1
}

// Leave records a device disconnecting. The count floors at zero; when
// it reaches zero the record is removed and Departed is true. Leaving
// an unknown user is a no-op.
func (r *PresenceRegistry) Leave(userID string) LeaveResult {
	r.mu.Lock()

	rec, ok := r.records[userID]
	if !ok {
		r.mu.Unlock()
		return LeaveResult{}
	}

	rec.ConnectedDevices--
	if rec.ConnectedDevices <= 0 {
		delete(r.records, userID)
		count := len(r.records)
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.SetPresence(count)
		}
		logger.Debug("presence leave", logger.KeyUserID, userID, "departed", true)
		return LeaveResult{Departed: true}
	}

	devices := rec.ConnectedDevices
	r.mu.Unlock()

	logger.Debug("presence leave",
		logger.KeyUserID, userID,
		logger.KeyDevices, devices,
	)
	return LeaveResult{Devices: devices}
}

// SetStatus updates the user's status and refreshes LastSeen. Returns
// false when the user has no presence record.
func (r *PresenceRegistry) SetStatus(userID string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		return false
	}
	rec.Status = status
	rec.LastSeen = r.now()
	return true
}

// List returns a snapshot of all presence records, sorted by user ID
// for deterministic output.
func (r *PresenceRegistry) List() []PresenceRecord {
	r.mu.RLock()
	out := make([]PresenceRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Get returns the user's presence record.
func (r *PresenceRegistry) Get(userID string) (PresenceRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return PresenceRecord{}, false
	}
	return *rec, true
}

// Count returns the number of users with at least one connected device.
func (r *PresenceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
