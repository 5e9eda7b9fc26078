package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// ============================================================================
// String operations
// ============================================================================

func TestApplyStringInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		value    any
		position *int
		want     string
	}{
		{"middle", "abc", "X", intPtr(1), "aXbc"},
		{"start", "abc", "X", intPtr(0), "Xabc"},
		{"end", "abc", "X", intPtr(3), "abcX"},
		{"position clamps high", "abc", "X", intPtr(100), "abcX"},
		{"position clamps low", "abc", "X", intPtr(-5), "Xabc"},
		{"nil position defaults to zero", "abc", "X", nil, "Xabc"},
		{"multi-char value", "hello world", "brave ", intPtr(6), "hello brave world"},
		{"nil value splices nothing", "abc", nil, intPtr(1), "abc"},
		{"non-string value is rendered", "abc", 42, intPtr(1), "a42bc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := map[string]any{"title": tt.initial}
			err := Apply(content, &Operation{
				Type:     OpInsert,
				Path:     "title",
				Value:    tt.value,
				Position: tt.position,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, content["title"])
		})
	}
}

func TestApplyStringDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		position *int
		length   *int
		want     string
	}{
		{"single char default length", "abc", intPtr(1), nil, "ac"},
		{"explicit length", "abcdef", intPtr(1), intPtr(3), "aef"},
		{"length clamps to end", "abc", intPtr(1), intPtr(100), "a"},
		{"position past end is a no-op", "abc", intPtr(10), intPtr(1), "abc"},
		{"negative position clamps to start", "abc", intPtr(-2), intPtr(1), "bc"},
		{"negative length defaults to one", "abc", intPtr(0), intPtr(-3), "bc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := map[string]any{"title": tt.initial}
			err := Apply(content, &Operation{
				Type:     OpDelete,
				Path:     "title",
				Position: tt.position,
				Length:   tt.length,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, content["title"])
		})
	}
}

// ============================================================================
// Sequence operations
// ============================================================================

func TestApplySequenceInsert(t *testing.T) {
	t.Run("inserts at position", func(t *testing.T) {
		content := map[string]any{"items": []any{"a", "c"}}
		err := Apply(content, &Operation{
			Type:     OpInsert,
			Path:     "items",
			Value:    "b",
			Position: intPtr(1),
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "c"}, content["items"])
	})

	t.Run("position clamps to length", func(t *testing.T) {
		content := map[string]any{"items": []any{"a", "b"}}
		err := Apply(content, &Operation{
			Type:     OpInsert,
			Path:     "items",
			Value:    "z",
			Position: intPtr(99),
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b", "z"}, content["items"])
	})
}

func TestApplySequenceDelete(t *testing.T) {
	t.Run("removes range", func(t *testing.T) {
		content := map[string]any{"items": []any{"a", "b", "c", "d"}}
		err := Apply(content, &Operation{
			Type:     OpDelete,
			Path:     "items",
			Position: intPtr(1),
			Length:   intPtr(2),
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "d"}, content["items"])
	})

	t.Run("position past end is a no-op", func(t *testing.T) {
		content := map[string]any{"items": []any{"a"}}
		err := Apply(content, &Operation{
			Type:     OpDelete,
			Path:     "items",
			Position: intPtr(5),
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, content["items"])
	})
}

// ============================================================================
// Scalar and map operations
// ============================================================================

func TestApplyScalar(t *testing.T) {
	t.Run("insert assigns non-splicable target", func(t *testing.T) {
		content := map[string]any{"count": 1}
		err := Apply(content, &Operation{Type: OpInsert, Path: "count", Value: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, content["count"])
	})

	t.Run("insert creates missing key", func(t *testing.T) {
		content := map[string]any{}
		err := Apply(content, &Operation{Type: OpInsert, Path: "fresh", Value: "v"})
		require.NoError(t, err)
		assert.Equal(t, "v", content["fresh"])
	})

	t.Run("update assigns unconditionally", func(t *testing.T) {
		content := map[string]any{"title": "old"}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "title", Value: []any{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, []any{1, 2}, content["title"])
	})

	t.Run("delete removes the key", func(t *testing.T) {
		content := map[string]any{"title": 42}
		err := Apply(content, &Operation{Type: OpDelete, Path: "title"})
		require.NoError(t, err)
		_, ok := content["title"]
		assert.False(t, ok)
	})

	t.Run("delete on missing key is a no-op", func(t *testing.T) {
		content := map[string]any{"keep": 1}
		err := Apply(content, &Operation{Type: OpDelete, Path: "missing"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"keep": 1}, content)
	})
}

// ============================================================================
// Path traversal
// ============================================================================

func TestApplyNestedPaths(t *testing.T) {
	t.Run("descends through maps", func(t *testing.T) {
		content := map[string]any{
			"meta": map[string]any{"title": "abc"},
		}
		err := Apply(content, &Operation{
			Type:     OpInsert,
			Path:     "meta.title",
			Value:    "X",
			Position: intPtr(1),
		})
		require.NoError(t, err)
		meta := content["meta"].(map[string]any)
		assert.Equal(t, "aXbc", meta["title"])
	})

	t.Run("creates missing intermediate maps", func(t *testing.T) {
		content := map[string]any{}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "a.b.c", Value: 7})
		require.NoError(t, err)
		a := content["a"].(map[string]any)
		b := a["b"].(map[string]any)
		assert.Equal(t, 7, b["c"])
	})

	t.Run("descends through sequence indices", func(t *testing.T) {
		content := map[string]any{
			"sections": []any{
				map[string]any{"title": "one"},
				map[string]any{"title": "two"},
			},
		}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "sections.1.title", Value: "TWO"})
		require.NoError(t, err)
		sections := content["sections"].([]any)
		assert.Equal(t, "TWO", sections[1].(map[string]any)["title"])
	})

	t.Run("scalar mid-path is a path error", func(t *testing.T) {
		content := map[string]any{"title": "abc"}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "title.deep", Value: 1})
		require.Error(t, err)
		assert.True(t, IsPathError(err))
		// Content untouched on error
		assert.Equal(t, "abc", content["title"])
	})

	t.Run("out of range index is a path error", func(t *testing.T) {
		content := map[string]any{"items": []any{"a"}}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "items.5.x", Value: 1})
		require.Error(t, err)
		assert.True(t, IsPathError(err))
	})

	t.Run("non-numeric index is a path error", func(t *testing.T) {
		content := map[string]any{"items": []any{"a"}}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "items.first.x", Value: 1})
		require.Error(t, err)
		assert.True(t, IsPathError(err))
	})

	t.Run("empty path is a path error", func(t *testing.T) {
		content := map[string]any{}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "", Value: 1})
		require.Error(t, err)
		assert.True(t, IsPathError(err))
	})

	t.Run("empty segment is a path error", func(t *testing.T) {
		content := map[string]any{}
		err := Apply(content, &Operation{Type: OpUpdate, Path: "a..b", Value: 1})
		require.Error(t, err)
		assert.True(t, IsPathError(err))
	})

	t.Run("nil content is a mutate error", func(t *testing.T) {
		err := Apply(nil, &Operation{Type: OpUpdate, Path: "a", Value: 1})
		require.Error(t, err)
		assert.True(t, IsMutateError(err))
	})
}

// ============================================================================
// Digest and cloning
// ============================================================================

func TestDigest(t *testing.T) {
	t.Run("equal content yields equal digest", func(t *testing.T) {
		a := map[string]any{"b": 1, "a": "x"}
		b := map[string]any{"a": "x", "b": 1}
		assert.Equal(t, Digest(a), Digest(b))
	})

	t.Run("different content yields different digest", func(t *testing.T) {
		a := map[string]any{"a": "x"}
		b := map[string]any{"a": "y"}
		assert.NotEqual(t, Digest(a), Digest(b))
	})

	t.Run("digest is base36", func(t *testing.T) {
		d := Digest(map[string]any{"a": 1})
		require.NotEmpty(t, d)
		for _, r := range d {
			assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'), "unexpected rune %q", r)
		}
	})
}

func TestDeepClone(t *testing.T) {
	original := map[string]any{
		"title": "doc",
		"meta":  map[string]any{"tags": []any{"a", "b"}},
	}

	clone := DeepClone(original)
	require.Equal(t, original, clone)

	// Mutating the clone must not leak into the original.
	clone["title"] = "changed"
	clone["meta"].(map[string]any)["tags"].([]any)[0] = "z"

	assert.Equal(t, "doc", original["title"])
	assert.Equal(t, "a", original["meta"].(map[string]any)["tags"].([]any)[0])
}
