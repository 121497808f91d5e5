package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_LastWriteWins(t *testing.T) {
	d := NewDebouncer("k", 20*time.Millisecond, nil)

	var mu sync.Mutex
	var written []int
	results := make(chan error, 3)
	for i := 1; i <= 3; i++ {
		i := i
		d.Schedule(func(context.Context) error {
			mu.Lock()
			written = append(written, i)
			mu.Unlock()
			return nil
		}, func(err error) { results <- err })
	}

	assert.ErrorIs(t, <-results, ErrSuperseded)
	assert.ErrorIs(t, <-results, ErrSuperseded)
	select {
	case err := <-results:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("debounced write never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{3}, written)
	assert.False(t, d.Pending())
}

func TestDebouncer_FlushRunsImmediately(t *testing.T) {
	d := NewDebouncer("k", time.Hour, nil)
	var calls int32
	d.Schedule(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	require.True(t, d.Pending())

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())

	// nothing pending: no-op
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncer_StaleWriteLosesToNewerFlush(t *testing.T) {
	d := NewDebouncer("attendance:s1", time.Hour, nil)
	var written []string
	var staleResult error
	d.Schedule(func(context.Context) error {
		written = append(written, "old")
		return nil
	}, func(err error) { staleResult = err })

	// a timer has taken the old write but not yet reached the store
	stale := d.take(0)
	require.NotNil(t, stale)

	d.Schedule(func(context.Context) error {
		written = append(written, "new")
		return nil
	}, nil)
	require.NoError(t, d.Flush(context.Background()))

	err := d.run(context.Background(), stale)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.ErrorIs(t, staleResult, ErrSuperseded)
	assert.Equal(t, []string{"new"}, written)
}

func TestDebouncer_FailuresReachErrorChannel(t *testing.T) {
	errs := make(chan WriteError, 1)
	d := NewDebouncer("attendance:s1", time.Hour, errs)
	boom := errors.New("store down")
	d.Schedule(func(context.Context) error { return boom }, nil)

	err := d.Flush(context.Background())
	assert.ErrorIs(t, err, boom)

	select {
	case we := <-errs:
		assert.Equal(t, "attendance:s1", we.Key)
		assert.ErrorIs(t, we, boom)
	default:
		t.Fatal("write error was not reported")
	}
}

func TestRegistry_FlushAllJoinsErrors(t *testing.T) {
	r := NewRegistry(time.Hour, 4)
	boom := errors.New("boom")
	var ok int32
	r.For("a").Schedule(func(context.Context) error { return boom }, nil)
	r.For("b").Schedule(func(context.Context) error { atomic.AddInt32(&ok, 1); return nil }, nil)
	assert.Same(t, r.For("a"), r.For("a"))

	err := r.FlushAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ok))
	assert.Len(t, r.Errors(), 1)
}

func TestRegistry_DropDiscardsPending(t *testing.T) {
	r := NewRegistry(time.Hour, 1)
	var got error
	r.For("a").Schedule(func(context.Context) error {
		t.Fatal("dropped write ran")
		return nil
	}, func(err error) { got = err })

	r.Drop("a")
	assert.ErrorIs(t, got, ErrSuperseded)
	require.NoError(t, r.Flush(context.Background(), "a"))
}
