package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/metrics"
	"courtside/team-ops/internal/repository"
)

// Subscription receives practice changes for one session, minus the subscriber's own echoes.
type Subscription struct {
	C   <-chan domain.PracticeData
	ctx *Context
	ch  chan domain.PracticeData
}

// Hub fans stored practice changes out to subscribers.
type Hub struct {
	contexts *Contexts
	buffer   int

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub(contexts *Contexts, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{contexts: contexts, buffer: buffer, subs: map[string]map[*Subscription]struct{}{}}
}

func (h *Hub) Subscribe(clientID, sessionID string) *Subscription {
	ch := make(chan domain.PracticeData, h.buffer)
	sub := &Subscription{C: ch, ch: ch, ctx: h.contexts.Get(clientID, sessionID)}

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = map[*Subscription]struct{}{}
	}
	h.subs[sessionID][sub] = struct{}{}
	h.mu.Unlock()

	metrics.SSESubscribed()
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.ctx.SessionID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.ctx.SessionID)
	}
	close(sub.ch)
	metrics.SSEUnsubscribed()
}

// Publish delivers p to every subscriber of its session that did not author it.
// A subscriber whose buffer is full misses the update rather than stalling the hub.
func (h *Hub) Publish(p domain.PracticeData) {
	sessionID := p.SessionID.Hex()
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[sessionID] {
		if sub.ctx.IsEcho(p.UpdatedBy, p.UpdatedAt) {
			continue
		}
		select {
		case sub.ch <- p:
		default:
			log.Printf("WARN: [Sync] subscriber %s on %s is behind, dropping update", sub.ctx.ClientID, sessionID)
		}
	}
}

// Close ends every subscription, which lets open event streams return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
			metrics.SSEUnsubscribed()
		}
		delete(h.subs, sessionID)
	}
}

// Subscribers reports how many subscriptions sessionID has.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Run feeds the hub from watcher until ctx is done, reconnecting with backoff when the watch fails.
func (h *Hub) Run(ctx context.Context, watcher repository.PracticeWatcher) {
	backoff := time.Second
	for {
		err := watcher.Watch(ctx, h.Publish)
		if ctx.Err() != nil {
			log.Println("INFO: [Sync] practice watcher stopped")
			return
		}
		if err != nil {
			log.Printf("WARN: [Sync] practice watch ended: %v, retrying in %v", err, backoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
