// Package capture collects the text a handoff will carry.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/kernel/autopaste/internal/dom"
)

var (
	// ErrNoField means no text field or selection was found near the button.
	ErrNoField = errors.New("no text field found")
	// ErrEmptyField means the field was found but holds nothing.
	ErrEmptyField = errors.New("text field is empty")
)

// FromContextMenu returns the selection text if there is any, otherwise the
// value of the element last right-clicked on the page. An empty result is not
// an error: the context-menu path stays silent.
func FromContextMenu(ctx context.Context, doc dom.Document, selectionText string) (string, error) {
	if strings.TrimSpace(selectionText) != "" {
		return selectionText, nil
	}
	target, ok, err := doc.ContextTarget(ctx)
	if err != nil {
		return "", fmt.Errorf("read right-clicked element: %w", err)
	}
	if !ok {
		return "", nil
	}
	return target.Value(ctx)
}

// ButtonLookup controls how FromButton searches around a trigger button.
type ButtonLookup struct {
	// Near is queried in the button's parent.
	Near string
	// SelectionFallback uses the page selection when no field exists.
	SelectionFallback bool
}

var (
	// GeminiLookup also accepts single-line inputs and falls back to the selection.
	GeminiLookup = ButtonLookup{Near: `textarea, input[type="text"]`, SelectionFallback: true}
	// ChatGPTLookup only reads textareas.
	ChatGPTLookup = ButtonLookup{Near: "textarea"}
)

// FromButton reads the text field closest to button: the parent, then the
// grandparent, then the whole document.
func FromButton(ctx context.Context, doc dom.Document, button dom.Element, lookup ButtonLookup) (string, error) {
	field, err := nearestField(ctx, doc, button, lookup.Near)
	if err != nil {
		return "", err
	}
	if field == nil {
		if !lookup.SelectionFallback {
			return "", ErrNoField
		}
		sel, err := doc.Selection(ctx)
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		if sel == "" {
			return "", ErrNoField
		}
		return sel, nil
	}
	text, err := field.Value(ctx)
	if err != nil {
		return "", fmt.Errorf("read field: %w", err)
	}
	if text == "" {
		return "", ErrEmptyField
	}
	return text, nil
}

func nearestField(ctx context.Context, doc dom.Document, button dom.Element, near string) (dom.Element, error) {
	parent, ok, err := button.Parent(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		if f, found, err := parent.Query(ctx, near); err != nil {
			return nil, err
		} else if found {
			return f, nil
		}
		grand, ok, err := parent.Parent(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			if f, found, err := grand.Query(ctx, "textarea"); err != nil {
				return nil, err
			} else if found {
				return f, nil
			}
		}
	}
	f, found, err := doc.Query(ctx, "textarea")
	if err != nil || !found {
		return nil, err
	}
	return f, nil
}

// FromArgs joins command line words with single spaces.
func FromArgs(args []string) string {
	return strings.Join(args, " ")
}

// FromReader reads all of r.
func FromReader(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

// FromClipboard reads the system clipboard.
func FromClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard is not available on this system")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}
