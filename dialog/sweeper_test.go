package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepEvictsAndNotifies(t *testing.T) {
	m := NewManager()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)

	var notified []Dialog
	s := NewSweeper(m, 30*time.Minute, 5*time.Minute, func(removed []Dialog) {
		notified = append(notified, removed...)
	})

	// Fresh dialog survives the pass.
	assert.Equal(t, 0, s.Sweep())
	assert.Empty(t, notified)

	m.now = func() time.Time { return base.Add(time.Hour) }
	assert.Equal(t, 1, s.Sweep())
	require.Len(t, notified, 1)
	assert.Equal(t, "100", notified[0].UserID)
	assert.False(t, m.IsUserInDialog("100"))
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	m := NewManager()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ok, err := m.Create("100", "200")
	require.NoError(t, err)
	require.True(t, ok)
	m.now = func() time.Time { return base.Add(time.Hour) }

	swept := make(chan Dialog, 1)
	s := NewSweeper(m, 30*time.Minute, time.Millisecond, func(removed []Dialog) {
		swept <- removed[0]
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case d := <-swept:
		assert.Equal(t, "100", d.UserID)
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not fire")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeperDefaults(t *testing.T) {
	s := NewSweeper(NewManager(), 0, 0, nil)
	assert.Equal(t, 30*time.Minute, s.timeout)
	assert.Equal(t, 5*time.Minute, s.interval)
}
