package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is searched
const DefaultDebounce = 500 * time.Millisecond

// Ticket identifies one scheduled query
type Ticket struct {
	Generation uint64
	Query      string
}

// Debouncer holds a single resettable timer. Scheduling a query supersedes
// every earlier one; only the last armed timer fires.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
	fire       func(Ticket)
}

// NewDebouncer creates a debouncer calling fire after delay of quiet.
// A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fire func(Ticket)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule stops the pending timer and arms a new one for query
func (d *Debouncer) Schedule(query string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	t := Ticket{Generation: d.generation, Query: query}
	if d.fire != nil {
		d.timer = time.AfterFunc(d.delay, func() {
			if d.IsCurrent(t) {
				d.fire(t)
			}
		})
	}
	return t
}

// IsCurrent reports whether t is the most recently scheduled query
func (d *Debouncer) IsCurrent(t Ticket) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return t.Generation == d.generation
}

// Stop cancels the pending timer and invalidates outstanding tickets
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}
