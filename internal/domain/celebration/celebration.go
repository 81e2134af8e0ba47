// Package celebration provides the cosmetic winner flag that clears itself
// after a fixed delay.
package celebration

import (
	"sync"
	"time"
)

// Option applies a configuration option to a Flag.
type Option func(*Flag)

// WithOnExpire registers fn to run when the flag clears on its own.
func WithOnExpire(fn func()) Option {
	return func(f *Flag) {
		f.onExpire = fn
	}
}

// Flag is raised by Start and lowered by its timer or by Cancel.
// It is safe for concurrent use.
type Flag struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	active   bool
	gen      uint64
	onExpire func()
}

// New returns a lowered flag that stays up for delay once started.
func New(delay time.Duration, opts ...Option) *Flag {
	f := &Flag{delay: delay}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start raises the flag and schedules it to clear. A pending timer is replaced.
// A non-positive delay leaves the flag lowered.
func (f *Flag) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopLocked()
	if f.delay <= 0 {
		return
	}
	f.active = true
	gen := f.gen
	f.timer = time.AfterFunc(f.delay, func() { f.expire(gen) })
}

// Cancel lowers the flag and stops a pending timer.
// It reports whether a timer was pending.
func (f *Flag) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopLocked()
}

// Active reports whether the flag is raised.
func (f *Flag) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *Flag) stopLocked() bool {
	pending := f.active
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.active = false
	// A callback that already fired but is waiting on mu sees a newer
	// generation and leaves the state alone.
	f.gen++
	return pending
}

func (f *Flag) expire(gen uint64) {
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.active = false
	f.timer = nil
	fn := f.onExpire
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
}
