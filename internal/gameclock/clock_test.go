package gameclock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tick(c *Clock, n int) {
	for i := 0; i < n; i++ {
		c.TickGame()
		c.TickReal()
	}
}

func playerByID(t *testing.T, s Snapshot, id string) PlayerSnapshot {
	t.Helper()
	for _, p := range s.Players {
		if p.PlayerID == id {
			return p
		}
	}
	t.Fatalf("player %s not in snapshot", id)
	return PlayerSnapshot{}
}

func TestQuarterFor(t *testing.T) {
	tests := []struct {
		remaining int
		want      int
	}{
		{600, 1}, {451, 1}, {450, 2}, {301, 2}, {300, 3}, {151, 3}, {150, 4}, {1, 4}, {0, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuarterFor(tt.remaining), "remaining=%d", tt.remaining)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "10:00", FormatClock(600))
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "00:07", FormatClock(7))
	assert.Equal(t, "00:00", FormatClock(-3))
}

func TestToggle_NeverClearsStarted(t *testing.T) {
	c := New()
	assert.False(t, c.Snapshot().Started)

	c.Toggle()
	s := c.Snapshot()
	assert.True(t, s.Started)
	assert.True(t, s.Running)

	for i := 0; i < 5; i++ {
		c.Toggle()
		assert.True(t, c.Snapshot().Started)
	}
	assert.False(t, c.Snapshot().Running)
}

func TestTicks_OnlyAfterStart(t *testing.T) {
	c := New()
	c.AddPlayers("bench")
	tick(c, 5)
	s := c.Snapshot()
	assert.Equal(t, GameLength, s.Remaining)
	assert.Equal(t, 0, s.RealSeconds)

	c.Toggle()
	tick(c, 3)
	c.Toggle() // pause: countdown stops, real time and rest keep going
	tick(c, 2)

	s = c.Snapshot()
	assert.Equal(t, GameLength-3, s.Remaining)
	assert.Equal(t, 5, s.RealSeconds)
	assert.Equal(t, 5, playerByID(t, s, "bench").RestSeconds)
}

func TestTickGame_PausesAtZero(t *testing.T) {
	c := New()
	c.Toggle()
	tick(c, GameLength+10)
	s := c.Snapshot()
	assert.Equal(t, 0, s.Remaining)
	assert.False(t, s.Running)
	assert.True(t, s.Started)
	assert.Equal(t, "00:00", s.Display)
}

func TestPutInTakeOut_ZeroTicksCreditsNothing(t *testing.T) {
	c := New()
	c.Toggle()
	require.NoError(t, c.PutIn("p1"))
	require.NoError(t, c.TakeOut("p1"))

	p := playerByID(t, c.Snapshot(), "p1")
	require.Len(t, p.Stints, 1)
	require.NotNil(t, p.Stints[0].End)
	assert.Equal(t, p.Stints[0].Start, *p.Stints[0].End)
	assert.Equal(t, 0.0, p.Minutes())
}

func TestPutInTakeOut_OneMinuteInFirstQuarter(t *testing.T) {
	c := New()
	c.Toggle()
	require.NoError(t, c.PutIn("p1"))
	tick(c, 60)
	require.NoError(t, c.TakeOut("p1"))

	p := playerByID(t, c.Snapshot(), "p1")
	require.Len(t, p.Stints, 1)
	st := p.Stints[0]
	assert.Equal(t, "10:00", FormatClock(st.Start))
	assert.Equal(t, "09:00", FormatClock(*st.End))
	assert.Equal(t, 1, st.Quarter)
	assert.Equal(t, 60, p.PlayedSeconds)
	assert.Equal(t, 1.0, p.Minutes())
}

func TestPutInTakeOut_Errors(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.PutIn(""), ErrPlayerRequired)
	assert.ErrorIs(t, c.TakeOut("ghost"), ErrNotPlaying)
	require.NoError(t, c.PutIn("p1"))
	assert.ErrorIs(t, c.PutIn("p1"), ErrAlreadyPlaying)
}

func TestPutIn_ResetsRest(t *testing.T) {
	c := New()
	c.AddPlayers("p1")
	c.Toggle()
	tick(c, 4)
	require.NoError(t, c.PutIn("p1"))
	tick(c, 2)
	assert.Equal(t, 0, playerByID(t, c.Snapshot(), "p1").RestSeconds)
}

func TestHalfTimeReset(t *testing.T) {
	c := New()
	c.AddPlayers("bench")
	c.Toggle()
	require.NoError(t, c.PutIn("p1"))
	tick(c, 300)

	c.HalfTimeReset()
	s := c.Snapshot()
	p := playerByID(t, s, "p1")
	assert.True(t, p.Playing)
	assert.Equal(t, 300, p.PlayedSeconds)
	require.Len(t, p.Stints, 2)
	assert.Equal(t, 300, *p.Stints[0].End)
	assert.Equal(t, s.Remaining, p.Stints[1].Start)
	assert.Nil(t, p.Stints[1].End)
	assert.Equal(t, 3, p.Stints[1].Quarter)
	assert.Equal(t, 0, playerByID(t, s, "bench").RestSeconds)

	tick(c, 30)
	require.NoError(t, c.TakeOut("p1"))
	assert.Equal(t, 330, playerByID(t, c.Snapshot(), "p1").PlayedSeconds)
}

func TestReset(t *testing.T) {
	c := New()
	c.Toggle()
	require.NoError(t, c.PutIn("p1"))
	tick(c, 10)

	assert.ErrorIs(t, c.Reset(false), ErrResetNotConfirmed)
	assert.True(t, c.Snapshot().Started)

	require.NoError(t, c.Reset(true))
	s := c.Snapshot()
	assert.False(t, s.Started)
	assert.False(t, s.Running)
	assert.Equal(t, GameLength, s.Remaining)
	assert.Equal(t, 0, s.RealSeconds)
	p := playerByID(t, s, "p1")
	assert.False(t, p.Playing)
	assert.Empty(t, p.Stints)
	assert.Zero(t, p.PlayedSeconds)
}

func TestManager_RunnerLifecycle(t *testing.T) {
	m := NewManager(context.Background(), 5*time.Millisecond)
	defer m.Close()

	assert.False(t, m.Running("g1"))
	m.Toggle("g1")
	assert.True(t, m.Running("g1"))

	assert.Eventually(t, func() bool {
		s := m.Clock("g1").Snapshot()
		return s.Remaining < GameLength && s.RealSeconds > 0
	}, time.Second, 5*time.Millisecond)

	// pausing keeps the tickers alive
	m.Toggle("g1")
	assert.True(t, m.Running("g1"))

	_, err := m.Reset("g1", true)
	require.NoError(t, err)
	assert.False(t, m.Running("g1"))
	s := m.Clock("g1").Snapshot()
	assert.Equal(t, GameLength, s.Remaining)
}

func TestManager_RemoveAndLookup(t *testing.T) {
	m := NewManager(context.Background(), time.Hour)
	defer m.Close()

	_, ok := m.Lookup("g1")
	assert.False(t, ok)
	m.Toggle("g1")
	_, ok = m.Lookup("g1")
	assert.True(t, ok)

	m.Remove("g1")
	_, ok = m.Lookup("g1")
	assert.False(t, ok)
	assert.False(t, m.Running("g1"))
}

func TestManager_ConcurrentToggleAndResetKeepTickersInStep(t *testing.T) {
	m := NewManager(context.Background(), time.Hour)
	defer m.Close()

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Toggle("g1")
		}()
		go func() {
			defer wg.Done()
			_, err := m.Reset("g1", true)
			assert.NoError(t, err)
		}()
		wg.Wait()

		require.Equal(t, m.Clock("g1").Started(), m.Running("g1"), "round %d", round)
	}
}
