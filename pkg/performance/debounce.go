package performance

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of repeated events into a single callback.
// The gallery watcher uses it so a flurry of file events produces one
// reload.
type Debouncer struct {
	mutex    sync.Mutex
	timers   map[string]*time.Timer
	duration time.Duration
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		timers:   make(map[string]*time.Timer),
		duration: duration,
	}
}

// Debounce executes the function after the debounce duration has passed.
// If called again with the same key before the duration expires, the
// previous call is cancelled.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
	}

	d.timers[key] = time.AfterFunc(d.duration, func() {
		d.mutex.Lock()
		delete(d.timers, key)
		d.mutex.Unlock()
		fn()
	})
}

// Cancel cancels a pending debounced function call
func (d *Debouncer) Cancel(key string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Clear cancels all pending debounced function calls
func (d *Debouncer) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}

// ThrottledExecutor limits how often an operation may run. Location
// refreshes go through one so presentation-layer spam cannot stampede the
// location source.
type ThrottledExecutor struct {
	mutex       sync.Mutex
	lastExec    time.Time
	minInterval time.Duration
	pending     bool
	pendingFn   func()
	timer       *time.Timer
}

// NewThrottledExecutor creates a new throttled executor
func NewThrottledExecutor(minInterval time.Duration) *ThrottledExecutor {
	return &ThrottledExecutor{
		minInterval: minInterval,
	}
}

// Execute runs the function now if the interval has passed, otherwise
// schedules the latest pending function for when it does.
func (te *ThrottledExecutor) Execute(fn func()) {
	te.mutex.Lock()
	defer te.mutex.Unlock()

	now := time.Now()
	sinceLast := now.Sub(te.lastExec)

	if sinceLast >= te.minInterval {
		te.lastExec = now
		go fn()
		return
	}

	te.pendingFn = fn
	if !te.pending {
		te.pending = true
		waitTime := te.minInterval - sinceLast

		if te.timer != nil {
			te.timer.Stop()
		}

		te.timer = time.AfterFunc(waitTime, func() {
			te.mutex.Lock()
			if te.pending && te.pendingFn != nil {
				te.pending = false
				fn := te.pendingFn
				te.pendingFn = nil
				te.lastExec = time.Now()
				te.mutex.Unlock()
				go fn()
			} else {
				te.mutex.Unlock()
			}
		})
	}
}

// Stop cancels any scheduled pending execution.
func (te *ThrottledExecutor) Stop() {
	te.mutex.Lock()
	defer te.mutex.Unlock()

	te.pending = false
	te.pendingFn = nil
	if te.timer != nil {
		te.timer.Stop()
	}
}
