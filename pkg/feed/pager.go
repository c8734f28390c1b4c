package feed

import (
	"sync"
	"time"
)

// DefaultPageSize is how many photos a single reveal step adds.
const DefaultPageSize = 12

// Pager tracks how much of the composed feed is revealed. The window
// grows one page at a time, either when the client reports the reveal
// sentinel entering the viewport or when the fallback timer decides the
// report is overdue. Both paths collapse into the same clamped advance,
// so a duplicate trigger is harmless.
type Pager struct {
	mutex      sync.Mutex
	pageSize   int
	delay      time.Duration
	total      int
	window     int
	generation uint64
	timer      *time.Timer
	suspended  bool
	closed     bool
	onAdvance  func(window int)
}

// NewPager creates a pager revealing pageSize photos per step. When
// delay is positive, a timer advances the window whenever no trigger
// arrives within that span. onAdvance, if set, runs after every
// timer-driven advance.
func NewPager(pageSize int, delay time.Duration, onAdvance func(window int)) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		pageSize:  pageSize,
		delay:     delay,
		onAdvance: onAdvance,
	}
}

// Reset starts a fresh window over a recomposed feed of the given size.
// Any pending timer from the previous composition is invalidated.
func (p *Pager) Reset(total int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.generation++
	p.total = total
	p.window = p.pageSize
	if p.window > total {
		p.window = total
	}
	p.scheduleLocked()
}

// Retotal updates the feed size after an in-place edit, clamping the
// window if the feed shrank but otherwise leaving it where it was.
func (p *Pager) Retotal(total int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.generation++
	p.total = total
	if p.window > total {
		p.window = total
	}
	p.scheduleLocked()
}

// Advance grows the window by one page, clamped to the feed size, and
// returns the new window. Advancing an exhausted window changes
// nothing.
func (p *Pager) Advance() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.advanceLocked()
	return p.window
}

// Window returns how many photos are currently revealed.
func (p *Pager) Window() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.window
}

// Exhausted reports whether the whole feed is revealed.
func (p *Pager) Exhausted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.window >= p.total
}

// Suspend pauses or resumes the fallback timer. The grid is hidden
// while the map is shown, so growing the window there would reveal
// photos nobody scrolled to.
func (p *Pager) Suspend(suspended bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.suspended == suspended {
		return
	}
	p.suspended = suspended
	p.generation++
	p.scheduleLocked()
}

// Close stops the fallback timer for good.
func (p *Pager) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.closed = true
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pager) advanceLocked() {
	p.generation++
	if p.window < p.total {
		p.window += p.pageSize
		if p.window > p.total {
			p.window = p.total
		}
	}
	p.scheduleLocked()
}

// scheduleLocked replaces any pending timer with one for the current
// generation, or none at all when there is nothing left to reveal.
func (p *Pager) scheduleLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.closed || p.suspended || p.delay <= 0 || p.window >= p.total {
		return
	}
	gen := p.generation
	p.timer = time.AfterFunc(p.delay, func() {
		p.fire(gen)
	})
}

// fire is the timer callback. A timer that outlived its generation
// belongs to a composition that no longer exists and is dropped.
func (p *Pager) fire(gen uint64) {
	p.mutex.Lock()
	if p.closed || p.suspended || gen != p.generation {
		p.mutex.Unlock()
		return
	}
	p.advanceLocked()
	window := p.window
	cb := p.onAdvance
	p.mutex.Unlock()

	if cb != nil {
		cb(window)
	}
}
