package editor

import (
	"fmt"
	"strconv"
	"strings"
)

// Apply mutates content in place according to a single operation.
//
// The path is resolved by splitting on '.'; missing intermediate mapping
// keys are created as empty mappings. The final segment addresses the
// target value inside its parent:
//
//   - insert: splice into sequences and strings at the clamped position;
//     assign for every other shape.
//   - delete: splice out of sequences and strings; remove the key (or
//     element) for every other shape.
//   - update: assign unconditionally.
//
// Out-of-range positions clamp ([0, len] for inserts, [0, len) for
// deletes) and never error. The function is total over all type/shape
// combinations; a type mismatch falls through to the scalar branch.
// The only failure mode is a PathError: an intermediate segment that is
// present but is a scalar (or an out-of-range sequence index) cannot be
// traversed. Validation happens before any mutation, so on error the
// content is untouched.
func Apply(content map[string]any, op *Operation) error {
	if content == nil {
		return NewMutateError(op.Path, "nil content")
	}
	if op.Path == "" {
		return NewPathError(op.Path, "")
	}

	segments := strings.Split(op.Path, ".")
	_, err := applyAt(content, segments, op)
	return err
}

// applyAt descends into parent following segments and performs the
// mutation at the final segment. It returns the (possibly reallocated)
// parent so sequence splices propagate upward.
func applyAt(parent any, segments []string, op *Operation) (any, error) {
	seg := segments[0]
	if seg == "" {
		return parent, NewPathError(op.Path, seg)
	}

	switch p := parent.(type) {
	case map[string]any:
		if len(segments) == 1 {
			mutateMapEntry(p, seg, op)
			return p, nil
		}
		child, ok := p[seg]
		if !ok {
			child = map[string]any{}
		}
		newChild, err := applyAt(child, segments[1:], op)
		if err != nil {
			return p, err
		}
		p[seg] = newChild
		return p, nil

	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(p) {
			return parent, NewPathError(op.Path, seg)
		}
		if len(segments) == 1 {
			return mutateSliceEntry(p, idx, op), nil
		}
		newChild, err := applyAt(p[idx], segments[1:], op)
		if err != nil {
			return p, err
		}
		p[idx] = newChild
		return p, nil

	default:
		// Scalar in the middle of the path.
		return parent, NewPathError(op.Path, seg)
	}
}

// mutateMapEntry applies op to m[key].
func mutateMapEntry(m map[string]any, key string, op *Operation) {
	switch op.Type {
	case OpInsert:
		m[key] = insertValue(m[key], op)
	case OpDelete:
		if v, drop := deleteValue(m[key], op); drop {
			delete(m, key)
		} else {
			m[key] = v
		}
	case OpUpdate:
		m[key] = op.Value
	}
}

// mutateSliceEntry applies op to s[idx] and returns the resulting slice.
// The scalar delete branch removes the element itself.
func mutateSliceEntry(s []any, idx int, op *Operation) []any {
	switch op.Type {
	case OpInsert:
		s[idx] = insertValue(s[idx], op)
	case OpDelete:
		if v, drop := deleteValue(s[idx], op); drop {
			return append(s[:idx], s[idx+1:]...)
		} else {
			s[idx] = v
		}
	case OpUpdate:
		s[idx] = op.Value
	}
	return s
}

// insertValue returns the target value after an insert.
func insertValue(target any, op *Operation) any {
	switch t := target.(type) {
	case []any:
		pos := clamp(position(op), 0, len(t))
		out := make([]any, 0, len(t)+1)
		out = append(out, t[:pos]...)
		out = append(out, op.Value)
		out = append(out, t[pos:]...)
		return out
	case string:
		pos := clamp(position(op), 0, len(t))
		return t[:pos] + stringify(op.Value) + t[pos:]
	default:
		return op.Value
	}
}

// deleteValue returns the target value after a delete, or drop=true when
// the key/element itself should be removed (the scalar branch).
func deleteValue(target any, op *Operation) (val any, drop bool) {
	switch t := target.(type) {
	case []any:
		pos := position(op)
		if pos < 0 {
			pos = 0
		}
		if pos >= len(t) {
			return t, false
		}
		n := length(op)
		if n > len(t)-pos {
			n = len(t) - pos
		}
		return append(t[:pos], t[pos+n:]...), false
	case string:
		pos := position(op)
		if pos < 0 {
			pos = 0
		}
		if pos >= len(t) {
			return t, false
		}
		n := length(op)
		if n > len(t)-pos {
			n = len(t) - pos
		}
		return t[:pos] + t[pos+n:], false
	default:
		return nil, true
	}
}

// position returns the operation position, defaulting to 0.
func position(op *Operation) int {
	if op.Position == nil {
		return 0
	}
	return *op.Position
}

// length returns the operation length, defaulting to 1.
func length(op *Operation) int {
	if op.Length == nil || *op.Length < 0 {
		return 1
	}
	return *op.Length
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stringify renders a value for splicing into a string target.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
