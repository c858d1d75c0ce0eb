// Package debounce runs the last of a burst of calls after a quiet period.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer schedules a single delayed call. Scheduling a new call cancels
// the pending one, and a cancelled call never fires.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	fire    func()
	cancel  context.CancelFunc
	gen     uint64
	stopped bool

	wg sync.WaitGroup
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay. The context passed to fn is
// cancelled as soon as a newer call is scheduled or the debouncer stops.
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	gen := d.gen
	d.cancel = cancel

	d.wg.Add(1)
	d.fire = func() {
		defer d.wg.Done()
		defer cancel()

		d.mu.Lock()
		current := gen == d.gen && !d.stopped
		d.mu.Unlock()
		if !current {
			return
		}
		fn(ctx)
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs the pending call right away on the calling goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	fire := d.fire
	d.timer = nil
	d.fire = nil
	d.mu.Unlock()

	fire()
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	d.cancelLocked()
	d.mu.Unlock()
}

// Stop cancels the pending call and waits for a call already running.
// Triggers after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Debouncer) cancelLocked() {
	d.gen++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	// A timer that already fired releases the wait group itself.
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.fire = nil
}
