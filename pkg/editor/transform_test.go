package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertOp(clientID, path, value string, pos int, ts time.Time) *Operation {
	return &Operation{
		ClientID:  clientID,
		Type:      OpInsert,
		Path:      path,
		Value:     value,
		Position:  intPtr(pos),
		Timestamp: ts,
	}
}

func TestTransformShiftsLaterInsert(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	committed := insertOp("client-a", "title", "XY", 2, base)
	incoming := insertOp("client-b", "title", "Z", 5, base.Add(time.Second))

	out := Transform(incoming, []*Operation{committed})
	require.NotNil(t, out.Position)
	assert.Equal(t, 7, *out.Position)

	// The input operation is never modified.
	assert.Equal(t, 5, *incoming.Position)
}

func TestTransformEqualPositionTiebreak(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	t.Run("greater client id shifts", func(t *testing.T) {
		committed := insertOp("client-a", "title", "X", 3, base)
		incoming := insertOp("client-b", "title", "Y", 3, base.Add(time.Second))

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 4, *out.Position)
	})

	t.Run("smaller client id keeps position", func(t *testing.T) {
		committed := insertOp("client-b", "title", "X", 3, base)
		incoming := insertOp("client-a", "title", "Y", 3, base.Add(time.Second))

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 3, *out.Position)
	})
}

func TestTransformFilters(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	t.Run("committed op with later timestamp is ignored", func(t *testing.T) {
		committed := insertOp("client-a", "title", "X", 0, base.Add(time.Minute))
		incoming := insertOp("client-b", "title", "Y", 3, base)

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 3, *out.Position)
	})

	t.Run("equal timestamps are ignored", func(t *testing.T) {
		committed := insertOp("client-a", "title", "X", 0, base)
		incoming := insertOp("client-b", "title", "Y", 3, base)

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 3, *out.Position)
	})

	t.Run("different path is ignored", func(t *testing.T) {
		committed := insertOp("client-a", "body", "X", 0, base)
		incoming := insertOp("client-b", "title", "Y", 3, base.Add(time.Second))

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 3, *out.Position)
	})

	t.Run("committed insert after incoming position is ignored", func(t *testing.T) {
		committed := insertOp("client-a", "title", "X", 9, base)
		incoming := insertOp("client-b", "title", "Y", 3, base.Add(time.Second))

		out := Transform(incoming, []*Operation{committed})
		assert.Equal(t, 3, *out.Position)
	})
}

func TestTransformPassthrough(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	committed := insertOp("client-a", "title", "X", 0, base)

	t.Run("delete passes through", func(t *testing.T) {
		op := &Operation{
			ClientID:  "client-b",
			Type:      OpDelete,
			Path:      "title",
			Position:  intPtr(4),
			Timestamp: base.Add(time.Second),
		}
		out := Transform(op, []*Operation{committed})
		assert.Equal(t, 4, *out.Position)
	})

	t.Run("update passes through", func(t *testing.T) {
		op := &Operation{
			ClientID:  "client-b",
			Type:      OpUpdate,
			Path:      "title",
			Value:     "new",
			Timestamp: base.Add(time.Second),
		}
		out := Transform(op, []*Operation{committed})
		assert.Nil(t, out.Position)
	})

	t.Run("insert without position passes through", func(t *testing.T) {
		op := &Operation{
			ClientID:  "client-b",
			Type:      OpInsert,
			Path:      "title",
			Value:     "new",
			Timestamp: base.Add(time.Second),
		}
		out := Transform(op, []*Operation{committed})
		assert.Nil(t, out.Position)
	})
}

// Two replicas rebasing the same concurrent pair in opposite order must
// land both inserts at non-overlapping final positions.
func TestTransformConvergence(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	opA := insertOp("client-a", "title", "A", 2, base.Add(time.Second))
	opB := insertOp("client-b", "title", "B", 2, base.Add(2*time.Second))

	// Replica 1: A commits first, B rebased against A.
	content1 := map[string]any{"title": "hello"}
	require.NoError(t, Apply(content1, opA))
	rebasedB := Transform(opB, []*Operation{opA})
	require.NoError(t, Apply(content1, rebasedB))

	// B has the greater client ID, so it shifts past A.
	assert.Equal(t, 3, *rebasedB.Position)
	assert.Equal(t, "heABllo", content1["title"])
}
