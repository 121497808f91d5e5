// Package scheduler runs background work on a ticker.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"courtside/team-ops/internal/metrics"
)

// Task is a unit of work the queue retries until it succeeds or runs out of attempts.
type Task func(ctx context.Context) error

type entry struct {
	name     string
	run      Task
	attempts int
	due      time.Time
	lastErr  error
}

// RetryQueue retries failed follow-up work (cascade deletions) with exponential backoff.
// The primary operation that enqueued the task is never rolled back.
type RetryQueue struct {
	interval    time.Duration
	baseDelay   time.Duration
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	entries  []*entry
	given    int
	running  bool
	stopChan chan struct{}
}

type RetryConfig struct {
	Interval    time.Duration
	BaseDelay   time.Duration
	MaxAttempts int
}

func NewRetryQueue(cfg RetryConfig) *RetryQueue {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = cfg.Interval
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 5
	}
	return &RetryQueue{
		interval:    cfg.Interval,
		baseDelay:   cfg.BaseDelay,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Enqueue schedules task for its first retry after the base delay.
func (q *RetryQueue) Enqueue(name string, task Task) {
	q.mu.Lock()
	q.entries = append(q.entries, &entry{name: name, run: task, due: q.now().Add(q.baseDelay)})
	n := len(q.entries)
	q.mu.Unlock()

	metrics.SetRetryQueueDepth(n)
	log.Printf("WARN: [Retry] queued %s", name)
}

func (q *RetryQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	log.Printf("INFO: [Retry] Starting with interval %v", q.interval)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: [Retry] Context cancelled, stopping")
			return
		case <-q.stopChan:
			log.Println("INFO: [Retry] Stop signal received")
			return
		case <-ticker.C:
			q.ProcessDue(ctx)
		}
	}
}

func (q *RetryQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		close(q.stopChan)
		q.running = false
	}
}

// ProcessDue runs every task whose backoff has elapsed and returns how many succeeded.
func (q *RetryQueue) ProcessDue(ctx context.Context) int {
	now := q.now()
	q.mu.Lock()
	var due, waiting []*entry
	for _, e := range q.entries {
		if !e.due.After(now) {
			due = append(due, e)
		} else {
			waiting = append(waiting, e)
		}
	}
	q.entries = waiting
	q.mu.Unlock()

	succeeded := 0
	var again []*entry
	for _, e := range due {
		e.attempts++
		if err := e.run(ctx); err != nil {
			e.lastErr = err
			if e.attempts >= q.maxAttempts {
				log.Printf("ERROR: [Retry] giving up on %s after %d attempts: %v", e.name, e.attempts, err)
				q.mu.Lock()
				q.given++
				q.mu.Unlock()
				continue
			}
			e.due = now.Add(q.baseDelay << e.attempts)
			again = append(again, e)
			continue
		}
		log.Printf("INFO: [Retry] %s succeeded on attempt %d", e.name, e.attempts)
		succeeded++
	}

	q.mu.Lock()
	q.entries = append(q.entries, again...)
	n := len(q.entries)
	q.mu.Unlock()
	metrics.SetRetryQueueDepth(n)
	return succeeded
}

func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Status returns a snapshot of the queue, served at GET /api/v1/admin/retry.
func (q *RetryQueue) Status() map[string]interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := make([]string, 0, len(q.entries))
	for _, e := range q.entries {
		names = append(names, e.name)
	}
	return map[string]interface{}{
		"running":     q.running,
		"pending":     len(q.entries),
		"tasks":       names,
		"abandoned":   q.given,
		"interval":    q.interval.String(),
		"maxAttempts": q.maxAttempts,
	}
}
