// Package locator finds the destination page's input editor, which may not
// exist yet when the page finishes loading.
package locator

import (
	"context"
	"errors"
	"time"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/logging"
)

var (
	// ErrTimedOut is returned when polling used up every attempt.
	ErrTimedOut = errors.New("editor not found before attempts ran out")
	// ErrNotFound is returned when a one-shot lookup missed.
	ErrNotFound = errors.New("editor not found")
)

// Mode selects how lookups are scheduled.
type Mode int

const (
	// Polling retries on a fixed interval up to MaxAttempts times.
	Polling Mode = iota
	// OneShot waits Delay and looks once.
	OneShot
)

// Policy configures a Locator.
type Policy struct {
	Mode        Mode
	Interval    time.Duration
	MaxAttempts int
	LogEvery    int
	Delay       time.Duration
}

// PollingPolicy is 500ms ticks, 60 attempts, a diagnostic every 10.
func PollingPolicy() Policy {
	return Policy{Mode: Polling, Interval: 500 * time.Millisecond, MaxAttempts: 60, LogEvery: 10}
}

// OneShotPolicy waits 1.5s and looks once.
func OneShotPolicy() Policy {
	return Policy{Mode: OneShot, Delay: 1500 * time.Millisecond}
}

// State is the locator's lifecycle state.
type State int

const (
	Searching State = iota
	Found
	TimedOut
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case TimedOut:
		return "timed-out"
	}
	return "unknown"
}

// Result is what a Locate call ended with.
type Result struct {
	State    State
	Element  dom.Element
	Finder   string
	Attempts int
}

// Locator runs a policy over a prioritized finder list.
type Locator struct {
	Policy  Policy
	Finders []Finder
	Clock   Clock
	Log     *logging.Logger
}

// Locate blocks until the editor is found, the policy gives up, or ctx ends.
func (l *Locator) Locate(ctx context.Context, doc dom.Document) (Result, error) {
	clock := l.Clock
	if clock == nil {
		clock = RealClock{}
	}
	log := l.Log
	if log == nil {
		log = logging.Nop()
	}
	if l.Policy.Mode == OneShot {
		return l.oneShot(ctx, doc, clock, log)
	}
	return l.poll(ctx, doc, clock, log)
}

func (l *Locator) oneShot(ctx context.Context, doc dom.Document, clock Clock, log *logging.Logger) (Result, error) {
	res := Result{State: Searching}
	select {
	case <-ctx.Done():
		return res, ctx.Err()
	case <-clock.After(l.Policy.Delay):
	}
	res.Attempts = 1
	el, name, ok := l.find(ctx, doc, log)
	if !ok {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.State = TimedOut
		log.Error("editor not found")
		return res, ErrNotFound
	}
	res.State, res.Element, res.Finder = Found, el, name
	log.Debug("editor found", "finder", name)
	return res, nil
}

func (l *Locator) poll(ctx context.Context, doc dom.Document, clock Clock, log *logging.Logger) (Result, error) {
	res := Result{State: Searching}
	ticker := clock.NewTicker(l.Policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C():
		}
		res.Attempts++
		if el, name, ok := l.find(ctx, doc, log); ok {
			res.State, res.Element, res.Finder = Found, el, name
			log.Debug("editor found", "finder", name, "attempt", res.Attempts)
			return res, nil
		}
		if l.Policy.LogEvery > 0 && res.Attempts%l.Policy.LogEvery == 0 {
			log.Debug("still looking for editor", "attempt", res.Attempts)
		}
		if res.Attempts >= l.Policy.MaxAttempts {
			res.State = TimedOut
			log.Error("editor not found", "attempts", res.Attempts)
			return res, ErrTimedOut
		}
	}
}

// find tries each finder in order; a finder that errors counts as a miss.
func (l *Locator) find(ctx context.Context, doc dom.Document, log *logging.Logger) (dom.Element, string, bool) {
	for _, f := range l.Finders {
		el, ok, err := f.Find(ctx, doc)
		if err != nil {
			log.Debug("finder failed", "finder", f.Name, "error", err)
			continue
		}
		if ok {
			return el, f.Name, true
		}
	}
	return nil, "", false
}
