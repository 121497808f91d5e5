package syncer

import (
	"context"
	"testing"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContext_IsEcho(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	c := &Context{ClientID: "tablet-1", SessionID: "s"}

	assert.False(t, c.IsEcho("tablet-1", at), "no write recorded yet")

	c.MarkWrite(at)
	tests := []struct {
		name      string
		updatedBy string
		updatedAt time.Time
		want      bool
	}{
		{"own write", "tablet-1", at, true},
		{"own write at store precision", "tablet-1", at.Truncate(time.Millisecond), true},
		{"own older write", "tablet-1", at.Add(-time.Second), true},
		{"own newer write from another tab", "tablet-1", at.Add(time.Second), false},
		{"other client", "tablet-2", at, false},
		{"anonymous", "", at, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsEcho(tt.updatedBy, tt.updatedAt))
		})
	}
}

func TestContexts_DropSession(t *testing.T) {
	s := NewContexts()
	a := s.Get("c1", "s1")
	assert.Same(t, a, s.Get("c1", "s1"))
	s.Get("c2", "s1")
	s.Get("c1", "s2")

	s.DropSession("s1")
	assert.Equal(t, 1, s.Len())
}

func TestHub_SkipsOwnEchoes(t *testing.T) {
	contexts := NewContexts()
	h := NewHub(contexts, 4)
	sessionID := primitive.NewObjectID()

	mine := h.Subscribe("c1", sessionID.Hex())
	theirs := h.Subscribe("c2", sessionID.Hex())
	other := h.Subscribe("c3", primitive.NewObjectID().Hex())
	defer h.Unsubscribe(mine)
	defer h.Unsubscribe(theirs)
	defer h.Unsubscribe(other)

	at := time.Now().UTC()
	contexts.Get("c1", sessionID.Hex()).MarkWrite(at)

	p := *domain.NewPracticeData(sessionID)
	p.UpdatedBy, p.UpdatedAt = "c1", at
	h.Publish(p)

	assert.Len(t, mine.C, 0)
	assert.Len(t, theirs.C, 1)
	assert.Len(t, other.C, 0)
}

func TestHub_UnsubscribeTwice(t *testing.T) {
	h := NewHub(NewContexts(), 1)
	sub := h.Subscribe("c1", "s1")
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Subscribers("s1"))
	_, open := <-sub.C
	assert.False(t, open)
}

func TestHub_RunForwardsStoreChanges(t *testing.T) {
	store := memory.NewStore()
	h := NewHub(NewContexts(), 4)
	sessionID := primitive.NewObjectID()
	sub := h.Subscribe("viewer", sessionID.Hex())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx, store.PracticeWatcher())
		close(done)
	}()

	// the watcher registers asynchronously; write until the hub sees it
	require.Eventually(t, func() bool {
		_ = store.Practices().SetAttendance(ctx, sessionID,
			map[string]domain.AttendanceRecord{"p1": {Present: true}}, "editor", time.Now())
		return len(sub.C) > 0
	}, time.Second, 10*time.Millisecond)

	got := <-sub.C
	assert.True(t, got.Attendance["p1"].Present)

	cancel()
	<-done
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	h := NewHub(NewContexts(), 1)
	sub := h.Subscribe("c1", "s1")

	h.Close()
	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("s1"))
	h.Unsubscribe(sub)
}
