// Package submit clicks the destination's send control once the inserted
// text has settled.
package submit

import (
	"context"
	"time"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/logging"
)

// Outcome of a single submission attempt.
type Outcome string

const (
	Clicked  Outcome = "clicked"
	Disabled Outcome = "disabled"
	NotFound Outcome = "not-found"
)

// DefaultSelectors are tried in order; the first match wins.
var DefaultSelectors = []string{
	`button[aria-label*="發送"]`,
	`button[aria-label*="Send"]`,
	`button[aria-label*="Submit"]`,
	`.send-button`,
}

// DefaultSettle is how long the page gets to react to the inserted text.
const DefaultSettle = 800 * time.Millisecond

// Trigger finds and clicks the submit control. It never retries.
type Trigger struct {
	Settle    time.Duration
	Selectors []string
	Clock     locator.Clock
	Log       *logging.Logger
}

// New returns a Trigger with the default settle delay and selectors.
func New(log *logging.Logger) *Trigger {
	return &Trigger{Settle: DefaultSettle, Selectors: DefaultSelectors, Log: log}
}

// Try waits for the settle delay and attempts one click.
func (t *Trigger) Try(ctx context.Context, doc dom.Document) (Outcome, error) {
	clock := t.Clock
	if clock == nil {
		clock = locator.RealClock{}
	}
	log := t.Log
	if log == nil {
		log = logging.Nop()
	}

	select {
	case <-ctx.Done():
		return NotFound, ctx.Err()
	case <-clock.After(t.Settle):
	}

	for _, sel := range t.Selectors {
		btn, ok, err := doc.Query(ctx, sel)
		if err != nil {
			log.Debug("submit lookup failed", "selector", sel, "error", err)
			continue
		}
		if !ok {
			continue
		}
		disabled, err := btn.Disabled(ctx)
		if err != nil {
			return NotFound, err
		}
		if disabled {
			log.Warn("submit control is disabled", "selector", sel)
			return Disabled, nil
		}
		if err := btn.Click(ctx); err != nil {
			return NotFound, err
		}
		log.Debug("submitted", "selector", sel)
		return Clicked, nil
	}
	log.Error("submit control not found")
	return NotFound, nil
}
