package realtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAppendAndLen(t *testing.T) {
	l := NewEventLog(10, nil)
	assert.Equal(t, 0, l.Len())

	l.Append(&Event{ID: "1", Type: EventTileCreated})
	l.Append(&Event{ID: "2", Type: EventTileUpdated})
	assert.Equal(t, 2, l.Len())
}

func TestEventLogBound(t *testing.T) {
	l := NewEventLog(3, nil)

	for i := 1; i <= 5; i++ {
		l.Append(&Event{ID: fmt.Sprintf("%d", i)})
	}

	// Capped at three; the two oldest were evicted.
	assert.Equal(t, 3, l.Len())
}

func TestEventLogEvictionOrder(t *testing.T) {
	l := NewEventLog(3, nil)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		l.Append(&Event{
			ID:        fmt.Sprintf("%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}

	got := l.Since(base)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "4", got[1].ID)
	assert.Equal(t, "5", got[2].ID)
}

func TestEventLogSince(t *testing.T) {
	l := NewEventLog(10, nil)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		l.Append(&Event{
			ID:        fmt.Sprintf("%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	t.Run("strictly greater", func(t *testing.T) {
		// The anchor event itself is excluded.
		got := l.Since(base.Add(time.Minute))
		require.Len(t, got, 2)
		assert.Equal(t, "2", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	})

	t.Run("before everything", func(t *testing.T) {
		assert.Len(t, l.Since(base.Add(-time.Hour)), 4)
	})

	t.Run("after everything", func(t *testing.T) {
		assert.Empty(t, l.Since(base.Add(time.Hour)))
	})
}

func TestEventLogDefaultBound(t *testing.T) {
	l := NewEventLog(0, nil)
	assert.Equal(t, DefaultMaxEventLog, l.max)

	l = NewEventLog(-5, nil)
	assert.Equal(t, DefaultMaxEventLog, l.max)
}
