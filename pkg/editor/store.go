package editor

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/internal/telemetry"
	"github.com/tesseralab/tessera/pkg/metrics"
)

// ApplyResult reports a committed operation.
type ApplyResult struct {
	DocumentID string     `json:"documentId"`
	Revision   int64      `json:"revision"`
	Hash       string     `json:"hash"`
	Operation  *Operation `json:"operation"`
}

// DocumentStats summarizes a document for monitoring surfaces.
type DocumentStats struct {
	DocumentID     string    `json:"documentId"`
	Revision       int64     `json:"revision"`
	OperationCount int       `json:"operationCount"`
	ActiveSessions int       `json:"activeSessions"`
	ActiveUsers    int       `json:"activeUsers"`
	LastModified   time.Time `json:"lastModified"`
	ContentBytes   int       `json:"contentBytes"`
}

// docEntry pairs a document with its operation log under one mutex: the
// per-document critical section around (lock-check, mutate, revision-bump,
// log-append). Applies to different documents never contend.
type docEntry struct {
	mu           sync.Mutex
	doc          *Document
	log          []*Operation
	lastModified time.Time
}

// Store owns documents and their operation logs.
//
// Within one document, successful applies are linearizable: observers see
// revisions 0, 1, 2, ... with no gaps or reordering. Across documents,
// applies are independent. The store never emits fan-out events itself;
// that is the host's responsibility after a successful apply.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*docEntry

	locks    *LockTable
	sessions *SessionRegistry
	metrics  metrics.EditorMetrics

	now func() time.Time
}

// NewStore creates a document store backed by the given lock table and
// session registry. Metrics may be nil to disable collection.
func NewStore(locks *LockTable, sessions *SessionRegistry, m metrics.EditorMetrics) *Store {
	return &Store{
		docs:     make(map[string]*docEntry),
		locks:    locks,
		sessions: sessions,
		metrics:  m,
		now:      time.Now,
	}
}

// Locks exposes the lock table so hosts can acquire and release path
// locks around edits.
func (s *Store) Locks() *LockTable { return s.locks }

// AcquireLock takes or renews the exclusive lock on path for userID,
// recording the outcome.
func (s *Store) AcquireLock(path, userID string, ttl time.Duration) error {
	holder, held := s.locks.Holder(path)
	err := s.locks.Acquire(path, userID, ttl)

	if s.metrics != nil {
		switch {
		case err != nil:
			s.metrics.RecordLock("conflict")
		case held && holder == userID:
			s.metrics.RecordLock("renewed")
		default:
			s.metrics.RecordLock("acquired")
		}
	}
	return err
}

// ReleaseLock drops the lock on path if held by userID.
func (s *Store) ReleaseLock(path, userID string) bool {
	return s.locks.Release(path, userID)
}

// Sessions exposes the session registry.
func (s *Store) Sessions() *SessionRegistry { return s.sessions }

// CreateDocument registers a document with initial content at revision 0.
// An existing entry under the same ID is overwritten; avoiding collisions
// is the caller's responsibility.
func (s *Store) CreateDocument(documentID string, initialContent map[string]any, userID string) *Document {
	if initialContent == nil {
		initialContent = map[string]any{}
	}
	now := s.now()
	doc := &Document{
		ID:        documentID,
		Revision:  0,
		Content:   DeepClone(initialContent),
		Hash:      Digest(initialContent),
		CreatedBy: userID,
		CreatedAt: now,
	}

	s.mu.Lock()
	s.docs[documentID] = &docEntry{doc: doc, lastModified: now}
	count := len(s.docs)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetDocuments(count)
	}
	logger.Info("document created",
		logger.KeyDocumentID, documentID,
		logger.KeyUserID, userID,
	)
	return doc
}

// GetDocument returns the live document. The returned value is shared;
// callers must not mutate Content (use CreateSnapshot for a safe copy).
func (s *Store) GetDocument(documentID string) (*Document, bool) {
	e, ok := s.entry(documentID)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc, true
}

// ApplyOperation commits a single operation against a document.
//
// Procedure: resolve the document (NotFound), consult the lock table on
// the operation path (Locked when held by a different user), stamp the
// operation (ID, server timestamp, authored-against revision), mutate the
// content (PathError/MutateError), then bump the revision, refresh the
// hash, and append to the log. The input operation is not modified; the
// committed copy is returned in the result.
func (s *Store) ApplyOperation(ctx context.Context, documentID string, in *Operation) (*ApplyResult, error) {
	ctx, span := telemetry.StartApplySpan(ctx, documentID, string(in.Type), telemetry.Path(in.Path))
	defer span.End()

	start := s.now()

	e, ok := s.entry(documentID)
	if !ok {
		s.recordApply(in.Type, "not_found", start)
		err := NewNotFoundError(documentID)
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if holder, held := s.locks.Holder(in.Path); held && holder != in.UserID {
		s.recordApply(in.Type, "locked", start)
		err := NewLockedError(in.Path, holder)
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	op := in.Clone()
	op.ID = uuid.NewString()
	op.Timestamp = s.now()
	op.Revision = e.doc.Revision

	if err := Apply(e.doc.Content, op); err != nil {
		outcome := "mutate_error"
		if IsPathError(err) {
			outcome = "path_error"
		}
		s.recordApply(in.Type, outcome, start)
		telemetry.RecordError(ctx, err)
		logger.Debug("operation rejected",
			logger.KeyDocumentID, documentID,
			logger.KeyPath, in.Path,
			logger.KeyError, err,
		)
		return nil, err
	}

	e.doc.Revision++
	e.doc.Hash = Digest(e.doc.Content)
	e.log = append(e.log, op)
	e.lastModified = op.Timestamp

	s.recordApply(in.Type, "ok", start)
	telemetry.SetAttributes(ctx, telemetry.Revision(e.doc.Revision))
	logger.Debug("operation applied",
		logger.KeyDocumentID, documentID,
		logger.KeyRevision, e.doc.Revision,
		logger.KeyPath, op.Path,
		logger.KeyUserID, op.UserID,
	)

	return &ApplyResult{
		DocumentID: documentID,
		Revision:   e.doc.Revision,
		Hash:       e.doc.Hash,
		Operation:  op,
	}, nil
}

// OperationHistory returns committed operations [from, to) with slice
// semantics; a negative or oversized to means the end of the log. The
// returned operations are shared read-only values.
func (s *Store) OperationHistory(documentID string, from, to int) []*Operation {
	e, ok := s.entry(documentID)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.log)
	if to < 0 || to > n {
		to = n
	}
	if from < 0 {
		from = 0
	}
	if from >= to {
		return nil
	}
	out := make([]*Operation, to-from)
	copy(out, e.log[from:to])
	return out
}

// CreateSnapshot captures an immutable copy of the document at its
// current revision. Content is deep-cloned; the operations slice is a
// copy referencing the shared committed entries.
func (s *Store) CreateSnapshot(documentID, userID string) (*Snapshot, bool) {
	e, ok := s.entry(documentID)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ops := make([]*Operation, len(e.log))
	copy(ops, e.log)

	return &Snapshot{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Revision:   e.doc.Revision,
		Content:    DeepClone(e.doc.Content),
		Operations: ops,
		Hash:       e.doc.Hash,
		CreatedBy:  userID,
		CreatedAt:  s.now(),
	}, true
}

// DetectConflicts reports whether two document versions diverge: true iff
// both hash and revision differ. Matching revisions with differing hashes
// (or vice versa) do not count as a conflict.
func (s *Store) DetectConflicts(a, b *Document) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Hash != b.Hash && a.Revision != b.Revision
}

// MergeVersions resolves two divergent versions by last-writer-wins on
// CreatedAt: the loser's content is discarded entirely. The merged
// document gets a fresh ID and revision max(a, b)+1.
//
// Wall-clock skew across producers can flip the winner; this is not a
// CRDT. Callers needing convergence without a central clock must add
// logical timestamps at the application layer.
func (s *Store) MergeVersions(a, b *Document) *Document {
	winner := a
	if b.CreatedAt.After(a.CreatedAt) {
		winner = b
	}

	rev := a.Revision
	if b.Revision > rev {
		rev = b.Revision
	}

	content := DeepClone(winner.Content)
	return &Document{
		ID:        uuid.NewString(),
		Revision:  rev + 1,
		Content:   content,
		Hash:      Digest(content),
		CreatedBy: winner.CreatedBy,
		CreatedAt: s.now(),
	}
}

// Stats summarizes a document: revision, log length, live sessions and
// distinct users among them, last-modified time, and content size.
func (s *Store) Stats(documentID string) (*DocumentStats, bool) {
	e, ok := s.entry(documentID)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	rev := e.doc.Revision
	opCount := len(e.log)
	lastMod := e.lastModified
	data, _ := json.Marshal(e.doc.Content)
	e.mu.Unlock()

	active := s.sessions.ActiveSessions(documentID)
	users := make(map[string]struct{}, len(active))
	for _, sess := range active {
		users[sess.UserID] = struct{}{}
	}

	return &DocumentStats{
		DocumentID:     documentID,
		Revision:       rev,
		OperationCount: opCount,
		ActiveSessions: len(active),
		ActiveUsers:    len(users),
		LastModified:   lastMod,
		ContentBytes:   len(data),
	}, true
}

// DocumentCount returns how many documents the store holds.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) entry(documentID string) (*docEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[documentID]
	return e, ok
}

func (s *Store) recordApply(opType OpType, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOperation(string(opType), outcome, s.now().Sub(start))
}
