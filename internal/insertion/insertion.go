// Package insertion puts text into a located editor so the page's own
// framework notices it.
package insertion

import (
	"context"
	"fmt"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/logging"
)

// Path names the content-setting path that was used.
type Path string

const (
	PathValue   Path = "value"
	PathCommand Path = "insert-command"
	PathText    Path = "text"
)

// Options are the per-destination insertion knobs.
type Options struct {
	InsertCommand bool
	Notify        []string
	Log           *logging.Logger
}

// Result reports how the text was set.
type Result struct {
	Path Path
	// CommandFailed is set when the insert command was tried and fell back.
	CommandFailed bool
}

// Insert focuses editor, sets its content through exactly one path and then
// dispatches the notification events.
func Insert(ctx context.Context, editor dom.Element, text string, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	caps, err := editor.Capabilities(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("probe editor: %w", err)
	}
	if err := editor.Focus(ctx); err != nil {
		return Result{}, fmt.Errorf("focus editor: %w", err)
	}

	var res Result
	switch {
	case caps.HasValue:
		if err := editor.SetValue(ctx, text); err != nil {
			return res, fmt.Errorf("set value: %w", err)
		}
		res.Path = PathValue
	case opts.InsertCommand:
		ok, err := editor.InsertText(ctx, text)
		if err == nil && ok {
			res.Path = PathCommand
			break
		}
		log.Debug("insert command did not apply, replacing text", "error", err)
		res.CommandFailed = true
		if err := editor.SetText(ctx, text); err != nil {
			return res, fmt.Errorf("set text: %w", err)
		}
		res.Path = PathText
	default:
		if err := editor.SetText(ctx, text); err != nil {
			return res, fmt.Errorf("set text: %w", err)
		}
		res.Path = PathText
	}

	if len(opts.Notify) > 0 {
		if err := editor.Notify(ctx, opts.Notify...); err != nil {
			return res, fmt.Errorf("notify editor: %w", err)
		}
	}
	log.Debug("text inserted", "path", res.Path, "tag", caps.Tag)
	return res, nil
}
