package gameclock

import (
	"context"
	"log"
	"sync"
	"time"
)

// runner drives a clock's two tickers until its context is cancelled.
type runner struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startRunner(parent context.Context, c *Clock, interval time.Duration) *runner {
	ctx, cancel := context.WithCancel(parent)
	r := &runner{cancel: cancel}
	r.wg.Add(2)
	go r.loop(ctx, interval, c.TickGame)
	go r.loop(ctx, interval, c.TickReal)
	return r
}

func (r *runner) loop(ctx context.Context, interval time.Duration, tick func()) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

func (r *runner) stop() {
	r.cancel()
	r.wg.Wait()
}

// Manager holds one clock per game session and owns the tickers of every started clock.
type Manager struct {
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration

	// lifecycle makes a clock change and its runner start or stop one step.
	lifecycle sync.Mutex

	mu      sync.Mutex
	clocks  map[string]*Clock
	runners map[string]*runner
}

// NewManager scopes every runner to ctx. interval is one clock second (time.Second in production).
func NewManager(ctx context.Context, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		clocks:   map[string]*Clock{},
		runners:  map[string]*runner{},
	}
}

// Clock returns the clock for gameID, creating it on first use.
func (m *Manager) Clock(gameID string) *Clock {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clocks[gameID]
	if !ok {
		c = New()
		m.clocks[gameID] = c
	}
	return c
}

// Lookup returns the clock for gameID without creating one.
func (m *Manager) Lookup(gameID string) (*Clock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clocks[gameID]
	return c, ok
}

// Toggle flips the game's clock and starts its tickers the first time it starts.
func (m *Manager) Toggle(gameID string) Snapshot {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	c := m.Clock(gameID)
	c.Toggle()

	m.mu.Lock()
	if _, ok := m.runners[gameID]; !ok && c.Started() {
		m.runners[gameID] = startRunner(m.ctx, c, m.interval)
		log.Printf("INFO: [GameClock] tickers started for %s", gameID)
	}
	m.mu.Unlock()
	return c.Snapshot()
}

// Reset zeroes the game and releases its tickers.
func (m *Manager) Reset(gameID string, confirm bool) (Snapshot, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	c := m.Clock(gameID)
	if err := c.Reset(confirm); err != nil {
		return c.Snapshot(), err
	}
	m.stopRunner(gameID)
	return c.Snapshot(), nil
}

// Remove drops the game's clock entirely.
func (m *Manager) Remove(gameID string) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.stopRunner(gameID)
	m.mu.Lock()
	delete(m.clocks, gameID)
	m.mu.Unlock()
}

func (m *Manager) stopRunner(gameID string) {
	m.mu.Lock()
	r, ok := m.runners[gameID]
	delete(m.runners, gameID)
	m.mu.Unlock()
	if ok {
		r.stop()
	}
}

// Running reports whether gameID currently has tickers.
func (m *Manager) Running(gameID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.runners[gameID]
	return ok
}

// Close stops every runner.
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	runners := m.runners
	m.runners = map[string]*runner{}
	m.mu.Unlock()
	for _, r := range runners {
		r.wg.Wait()
	}
}
