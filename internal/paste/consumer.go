// Package paste consumes a staged handoff on a destination page: it finds the
// editor, inserts the text, clears the record and optionally submits.
package paste

import (
	"context"
	"errors"
	"fmt"

	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/insertion"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/logging"
	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/internal/submit"
)

// Outcome is how a consumption attempt ended.
type Outcome string

const (
	OutcomeNotDestination Outcome = "not-destination"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeNoPending      Outcome = "no-pending"
	OutcomeManualOpen     Outcome = "manual-open"
	OutcomePromptOnly     Outcome = "prompt-only"
	OutcomeEditorNotFound Outcome = "editor-not-found"
	OutcomePasted         Outcome = "pasted"
)

// Report describes one Consume call.
type Report struct {
	Outcome   Outcome
	Variant   string
	Attempts  int
	Insertion insertion.Result
	// Submit is empty when the variant does not submit.
	Submit submit.Outcome
	// Stale is set when the record was still readable after clearing.
	Stale bool
}

// Consumer runs the destination-side sequence.
type Consumer struct {
	Settings *settings.Settings
	Clock    locator.Clock
	Log      *logging.Logger
}

// Consume runs at most once per page load. Errors from storage or the page
// are returned; a missing editor is an outcome, not an error, and leaves the
// record for the next load.
func (c *Consumer) Consume(ctx context.Context, load *PageLoad, doc dom.Document) (Report, error) {
	log := c.Log
	if log == nil {
		log = logging.Nop()
	}
	pageURL, err := doc.URL(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read page url: %w", err)
	}
	variant, ok := destination.Match(pageURL)
	if !ok {
		return Report{Outcome: OutcomeNotDestination}, nil
	}
	rep := Report{Variant: variant.Name}
	log = log.With("target", variant.Name, "load", load.ID)

	if !load.Mark() {
		log.Debug("already ran for this page load")
		rep.Outcome = OutcomeDuplicate
		return rep, nil
	}

	rec, err := c.Settings.Handoff(ctx)
	if err != nil {
		return rep, fmt.Errorf("read handoff: %w", err)
	}
	if rec.Empty() {
		log.Debug("nothing pending")
		rep.Outcome = OutcomeNoPending
		return rep, nil
	}
	if !rec.AutoPasteEnabled {
		log.Debug("auto paste disabled, page opened manually")
		rep.Outcome = OutcomeManualOpen
		return rep, nil
	}

	prompt, err := c.Settings.Prompt(ctx)
	if err != nil {
		return rep, fmt.Errorf("read prompt: %w", err)
	}
	if prompt.IsPromptOnly(rec.PendingText) {
		log.Info("pending text is only the prompt, discarding")
		if err := c.Settings.ClearHandoff(ctx); err != nil {
			return rep, fmt.Errorf("clear handoff: %w", err)
		}
		rep.Outcome = OutcomePromptOnly
		return rep, nil
	}

	loc := &locator.Locator{
		Policy:  variant.Locator,
		Finders: variant.Finders,
		Clock:   c.Clock,
		Log:     log,
	}
	found, err := loc.Locate(ctx, doc)
	rep.Attempts = found.Attempts
	if errors.Is(err, locator.ErrTimedOut) || errors.Is(err, locator.ErrNotFound) {
		rep.Outcome = OutcomeEditorNotFound
		return rep, nil
	}
	if err != nil {
		return rep, err
	}

	rep.Insertion, err = insertion.Insert(ctx, found.Element, rec.PendingText, insertion.Options{
		InsertCommand: variant.InsertCommand,
		Notify:        variant.Notify,
		Log:           log,
	})
	if err != nil {
		return rep, fmt.Errorf("insert text: %w", err)
	}
	rep.Outcome = OutcomePasted

	if err := c.Settings.ClearHandoff(ctx); err != nil {
		log.Error("failed to clear handoff", "error", err)
	} else if err := c.Settings.VerifyCleared(ctx); err != nil {
		rep.Stale = errors.Is(err, settings.ErrStaleHandoff)
		log.Error("handoff record not cleared", "error", err)
	}

	if variant.Submit {
		trigger := submit.New(log)
		trigger.Clock = c.Clock
		rep.Submit, err = trigger.Try(ctx, doc)
		if err != nil {
			return rep, fmt.Errorf("submit: %w", err)
		}
	}
	log.Info("pasted", "path", rep.Insertion.Path, "submit", rep.Submit)
	return rep, nil
}
