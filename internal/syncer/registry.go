package syncer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Registry owns one Debouncer per key and the shared error channel they report on.
type Registry struct {
	delay time.Duration
	errs  chan WriteError

	mu         sync.Mutex
	debouncers map[string]*Debouncer
}

// NewRegistry creates debouncers with the given delay. buffer sizes the error channel.
func NewRegistry(delay time.Duration, buffer int) *Registry {
	return &Registry{
		delay:      delay,
		errs:       make(chan WriteError, buffer),
		debouncers: map[string]*Debouncer{},
	}
}

// For returns the debouncer for key, creating it on first use.
func (r *Registry) For(key string) *Debouncer {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debouncers[key]
	if !ok {
		d = NewDebouncer(key, r.delay, r.errs)
		r.debouncers[key] = d
	}
	return d
}

// Flush forces the pending write for key. Unknown keys are a no-op.
func (r *Registry) Flush(ctx context.Context, key string) error {
	r.mu.Lock()
	d, ok := r.debouncers[key]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return d.Flush(ctx)
}

// FlushAll forces every pending write and joins their errors.
func (r *Registry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	all := make([]*Debouncer, 0, len(r.debouncers))
	for _, d := range r.debouncers {
		all = append(all, d)
	}
	r.mu.Unlock()

	var errs []error
	for _, d := range all {
		if err := d.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Drop discards the pending write for key and forgets its debouncer.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	d, ok := r.debouncers[key]
	delete(r.debouncers, key)
	r.mu.Unlock()
	if ok {
		if p := d.take(0); p != nil && p.done != nil {
			p.done(ErrSuperseded)
		}
	}
}

// Errors is the channel failed writes are reported on.
func (r *Registry) Errors() <-chan WriteError {
	return r.errs
}
