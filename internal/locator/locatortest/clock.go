// Package locatortest provides a clock that never sleeps.
package locatortest

import (
	"sync"
	"time"

	"github.com/kernel/autopaste/internal/locator"
)

// Clock fires tickers as fast as they are read and resolves After at once.
// It records the durations it was asked for.
type Clock struct {
	mu      sync.Mutex
	afters  []time.Duration
	tickers []*Ticker
}

func (c *Clock) NewTicker(d time.Duration) locator.Ticker {
	t := &Ticker{Interval: d, c: make(chan time.Time), stop: make(chan struct{})}
	go t.run()
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.afters = append(c.afters, d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// Afters returns the durations passed to After.
func (c *Clock) Afters() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.afters...)
}

// Tickers returns every ticker created so far.
func (c *Clock) Tickers() []*Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Ticker(nil), c.tickers...)
}

// Ticker delivers a tick whenever the reader is ready, until stopped.
type Ticker struct {
	Interval time.Duration

	c       chan time.Time
	stop    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	stopped bool
}

func (t *Ticker) run() {
	for {
		select {
		case t.c <- time.Time{}:
		case <-t.stop:
			return
		}
	}
}

func (t *Ticker) C() <-chan time.Time { return t.c }

func (t *Ticker) Stop() {
	t.once.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()
		close(t.stop)
	})
}

// Stopped reports whether Stop was called.
func (t *Ticker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// ManualClock only ticks when Tick is called. After resolves at once.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

func (c *ManualClock) NewTicker(d time.Duration) locator.Ticker {
	t := &ManualTicker{c: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

func (c *ManualClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// Tick delivers one tick to every ticker that has not been stopped.
func (c *ManualClock) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tickers {
		if t.Stopped() {
			continue
		}
		select {
		case t.c <- time.Time{}:
		default:
		}
	}
}

// Tickers returns every ticker created so far.
func (c *ManualClock) Tickers() []*ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ManualTicker(nil), c.tickers...)
}

// ManualTicker is driven by ManualClock.Tick.
type ManualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *ManualTicker) C() <-chan time.Time { return t.c }

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
