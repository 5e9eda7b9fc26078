package editor

import (
	"encoding/json"
	"strconv"
	"time"
)

// OpType identifies the kind of mutation an Operation performs.
type OpType string

const (
	// OpInsert splices into sequences and strings, or assigns scalars.
	OpInsert OpType = "insert"

	// OpDelete removes elements, characters, or keys.
	OpDelete OpType = "delete"

	// OpUpdate assigns the value unconditionally.
	OpUpdate OpType = "update"
)

// Operation is a single edit against a document.
//
// Path is a dotted sequence of segments; each segment is a mapping key or
// an integer sequence index. Position and Length are optional and only
// meaningful for sequence and string operations. Revision records the
// document revision the operation was authored against; it is preserved
// for later transforms and is not the revision the commit produced.
type Operation struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Type     OpType `json:"type"`
	Path     string `json:"path"`
	Value    any    `json:"value,omitempty"`

	// OldValue is tracking-only metadata supplied by clients; the engine
	// never reads it.
	OldValue any `json:"oldValue,omitempty"`

	Position  *int      `json:"position,omitempty"`
	Length    *int      `json:"length,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Revision  int64     `json:"revision"`
}

// Clone returns a shallow copy of the operation with its own Position and
// Length pointers, so transforms never alias the caller's fields.
func (op *Operation) Clone() *Operation {
	out := *op
	if op.Position != nil {
		p := *op.Position
		out.Position = &p
	}
	if op.Length != nil {
		l := *op.Length
		out.Length = &l
	}
	return &out
}

// Document is a versioned, hierarchical value owned by the Store.
//
// Invariant: Hash == Digest(Content) after every successful apply, and
// Revision increases by exactly one per committed operation.
type Document struct {
	ID        string         `json:"id"`
	Revision  int64          `json:"revision"`
	Content   map[string]any `json:"content"`
	Hash      string         `json:"hash"`
	CreatedBy string         `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Snapshot is an immutable copy of a document at a revision. Content is
// deep-cloned; Operations references the committed log entries, which are
// values shared by read-only reference once published.
type Snapshot struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	Revision   int64          `json:"revision"`
	Content    map[string]any `json:"content"`
	Operations []*Operation   `json:"operations"`
	Hash       string         `json:"hash"`
	CreatedBy  string         `json:"createdBy"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Digest computes the content hash: a 32-bit rolling hash of the canonical
// JSON stringification (sorted mapping keys), rendered in base 36.
//
// The digest is non-cryptographic and used only for conflict-detection
// equality. Collisions are tolerable because they can only cause a false
// "no conflict" on the rare path where revisions are also identical, which
// conflict detection separately guards against.
func Digest(content map[string]any) string {
	data, err := json.Marshal(content)
	if err != nil {
		// Content is built from JSON-compatible values; marshal failure
		// means a host bug. An empty digest never equals a real one.
		return ""
	}

	var h int32
	for _, r := range string(data) {
		h = h<<5 - h + int32(r)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// DeepClone returns a recursive copy of a content tree. Maps and sequences
// are copied; scalars are shared (they are immutable values).
func DeepClone(content map[string]any) map[string]any {
	if content == nil {
		return nil
	}
	out := make(map[string]any, len(content))
	for k, v := range content {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepClone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
