// Package syncer coordinates local working copies with the document store: debounced
// writes, per-client echo detection and fan-out of stored changes to live subscribers.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"courtside/team-ops/internal/metrics"
)

// ErrSuperseded is passed to a pending write's completion callback when a newer write replaced it.
var ErrSuperseded = errors.New("superseded by a newer write")

// WriteFunc performs one store write.
type WriteFunc func(ctx context.Context) error

// WriteError reports a failed debounced write.
type WriteError struct {
	Key string
	Err error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("debounced write %s: %v", e.Key, e.Err)
}

func (e WriteError) Unwrap() error { return e.Err }

type pendingWrite struct {
	gen   uint64
	write WriteFunc
	done  func(error)
}

// Debouncer holds at most one pending write per key. Scheduling a new write replaces the pending
// one and restarts the delay. Writes run one at a time; a write that reaches the store after a
// newer one has run is skipped with ErrSuperseded.
type Debouncer struct {
	key          string
	delay        time.Duration
	writeTimeout time.Duration
	errs         chan<- WriteError

	mu      sync.Mutex
	timer   *time.Timer
	pending *pendingWrite
	gen     uint64

	writeMu sync.Mutex
	// lastRun is the newest generation that reached the store, guarded by writeMu.
	lastRun uint64
}

// NewDebouncer returns a debouncer that reports failures on errs (nil to only log them).
func NewDebouncer(key string, delay time.Duration, errs chan<- WriteError) *Debouncer {
	return &Debouncer{key: key, delay: delay, writeTimeout: 10 * time.Second, errs: errs}
}

// Schedule queues write to run after the delay. done, if non-nil, receives the write's result,
// or ErrSuperseded when a later Schedule replaces it first.
func (d *Debouncer) Schedule(write WriteFunc, done func(error)) {
	d.mu.Lock()
	replaced := d.pending
	d.gen++
	gen := d.gen
	d.pending = &pendingWrite{gen: gen, write: write, done: done}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()

	if replaced != nil && replaced.done != nil {
		replaced.done(ErrSuperseded)
	}
}

func (d *Debouncer) fire(gen uint64) {
	p := d.take(gen)
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()
	_ = d.run(ctx, p)
}

// take removes the pending write; gen 0 takes it unconditionally.
func (d *Debouncer) take(gen uint64) *pendingWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != 0 && gen != d.gen {
		return nil
	}
	p := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return p
}

func (d *Debouncer) run(ctx context.Context, p *pendingWrite) error {
	d.writeMu.Lock()
	if p.gen < d.lastRun {
		d.writeMu.Unlock()
		if p.done != nil {
			p.done(ErrSuperseded)
		}
		return ErrSuperseded
	}
	d.lastRun = p.gen
	err := p.write(ctx)
	d.writeMu.Unlock()

	metrics.RecordDebouncedWrite(err == nil)
	if err != nil {
		d.report(err)
	}
	if p.done != nil {
		p.done(err)
	}
	return err
}

func (d *Debouncer) report(err error) {
	we := WriteError{Key: d.key, Err: err}
	if d.errs == nil {
		log.Printf("ERROR: [Sync] %v", we)
		return
	}
	select {
	case d.errs <- we:
	default:
		log.Printf("ERROR: [Sync] error channel full, %v", we)
	}
}

// Flush runs the pending write now, if any, and returns its error.
func (d *Debouncer) Flush(ctx context.Context) error {
	p := d.take(0)
	if p == nil {
		return nil
	}
	return d.run(ctx, p)
}

// Pending reports whether a write is waiting for its delay to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
