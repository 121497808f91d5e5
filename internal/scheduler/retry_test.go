package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestQueue(maxAttempts int) (*RetryQueue, *time.Time) {
	q := NewRetryQueue(RetryConfig{Interval: time.Second, BaseDelay: time.Second, MaxAttempts: maxAttempts})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return now }
	return q, &now
}

func TestRetryQueue_WaitsForBackoff(t *testing.T) {
	q, now := newTestQueue(3)
	calls := 0
	q.Enqueue("delete practice", func(context.Context) error { calls++; return nil })

	assert.Equal(t, 0, q.ProcessDue(context.Background()))
	assert.Equal(t, 0, calls)

	*now = now.Add(time.Second)
	assert.Equal(t, 1, q.ProcessDue(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, q.Len())
}

func TestRetryQueue_RetriesThenGivesUp(t *testing.T) {
	q, now := newTestQueue(2)
	calls := 0
	q.Enqueue("delete cache", func(context.Context) error { calls++; return errors.New("down") })

	*now = now.Add(time.Second)
	q.ProcessDue(context.Background())
	assert.Equal(t, 1, q.Len(), "requeued after first failure")

	// backoff doubled: one second later is not enough
	*now = now.Add(time.Second)
	q.ProcessDue(context.Background())
	assert.Equal(t, 1, calls)

	*now = now.Add(time.Second)
	q.ProcessDue(context.Background())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 1, q.Status()["abandoned"])
}

func TestRetryQueue_RecoversAfterFailure(t *testing.T) {
	q, now := newTestQueue(5)
	fail := true
	q.Enqueue("delete practice", func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	*now = now.Add(time.Second)
	q.ProcessDue(context.Background())
	fail = false
	*now = now.Add(2 * time.Second)
	assert.Equal(t, 1, q.ProcessDue(context.Background()))
	assert.Equal(t, 0, q.Len())
}

func TestRetryQueue_StartStop(t *testing.T) {
	q := NewRetryQueue(RetryConfig{Interval: 10 * time.Millisecond})
	done := make(chan struct{})
	go func() {
		q.Start(context.Background())
		close(done)
	}()
	assert.Eventually(t, func() bool { return q.Status()["running"] == true }, time.Second, 5*time.Millisecond)
	q.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue did not stop")
	}
}
