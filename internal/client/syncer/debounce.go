package syncer

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last mutation before a
// debounced pass starts.
const DefaultDebounce = 2 * time.Second

// Debouncer collapses bursts of Schedule calls into a single call of fire,
// delay after the last one. It is owned by the composition root.
type Debouncer struct {
	delay time.Duration
	fire  func(userID string)

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func NewDebouncer(delay time.Duration, fire func(userID string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Schedule (re)starts the timer. Only the most recent call within the
// delay window results in fire being called.
func (d *Debouncer) Schedule(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(userID) })
}

// TriggerDebounced is Schedule under the name mutation hooks use.
func (d *Debouncer) TriggerDebounced(userID string) {
	d.Schedule(userID)
}

// CancelPending stops a scheduled call. It reports whether one was pending.
func (d *Debouncer) CancelPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}

// Close cancels any pending call and ignores later Schedule calls.
func (d *Debouncer) Close() {
	d.CancelPending()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
