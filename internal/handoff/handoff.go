// Package handoff stages captured text in the settings store and opens the
// destination that will consume it.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/logging"
)

// ErrNoText is returned for empty or whitespace-only captures.
var ErrNoText = errors.New("no text to send")

// Stager writes the handoff record.
type Stager interface {
	StageHandoff(ctx context.Context, text string) error
}

// Navigator opens a destination URL.
type Navigator interface {
	Open(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// Channel is the sending half of a handoff.
type Channel struct {
	Store     Stager
	Navigator Navigator
	Log       *logging.Logger
}

// Handoff stages text for variant and then navigates to it exactly once. A
// failed write means no navigation. Nothing is retried.
func (c *Channel) Handoff(ctx context.Context, variant destination.Variant, text string) error {
	log := c.Log
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("target", variant.Name)
	if strings.TrimSpace(text) == "" {
		log.Debug("nothing captured")
		return ErrNoText
	}
	if err := c.Store.StageHandoff(ctx, text); err != nil {
		log.Error("failed to stage text", "error", err)
		return fmt.Errorf("stage handoff: %w", err)
	}
	log.Debug("text staged", "chars", len([]rune(text)))
	if err := c.Navigator.Open(ctx, variant.URL); err != nil {
		log.Error("failed to open destination", "url", variant.URL, "error", err)
		return fmt.Errorf("open %s: %w", variant.URL, err)
	}
	return nil
}
