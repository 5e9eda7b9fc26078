package editor

// Transform rebases an incoming operation against a list of already
// committed concurrent operations, returning a copy whose position
// reflects the prior edits. The input operation is never modified.
//
// The rule set deliberately covers only string-insert vs string-insert on
// the same path: for every committed operation with an earlier timestamp
// that inserted on the identical path, the incoming position shifts right
// by the inserted length when the committed insert landed strictly before
// it, or at the same position when the incoming client ID is
// lexicographically greater (the deterministic tiebreak that makes two
// replicas rebasing the same pair converge).
//
// Every other type/path combination passes through unchanged. That gap is
// intentional: concurrent delete/update pairs are expected to be
// serialized by path locks when the application needs stronger safety.
// Do not extend the rule set here.
func Transform(op *Operation, against []*Operation) *Operation {
	out := op.Clone()
	if out.Type != OpInsert || out.Position == nil {
		return out
	}

	for _, other := range against {
		if other.Type != OpInsert || other.Position == nil {
			continue
		}
		if other.Path != out.Path {
			continue
		}
		if !other.Timestamp.Before(out.Timestamp) {
			continue
		}

		shift := len(stringify(other.Value))
		switch {
		case *other.Position < *out.Position:
			*out.Position += shift
		case *other.Position == *out.Position && out.ClientID > other.ClientID:
			*out.Position += shift
		}
	}

	return out
}
