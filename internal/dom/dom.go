// Package dom defines the slice of a live page that autopaste works against.
// The rod-backed implementation lives in internal/browser; tests use domtest.
package dom

import "context"

// NodeID identifies a node for the lifetime of a page load.
type NodeID string

// Capabilities describes which content-setting path an element supports.
type Capabilities struct {
	Tag string
	// HasValue is true for form fields exposing a string value slot.
	HasValue bool
	// Editable is true for rich editable regions (isContentEditable).
	Editable bool
}

// Element is a handle to a live element.
type Element interface {
	ID(ctx context.Context) (NodeID, error)
	Capabilities(ctx context.Context) (Capabilities, error)

	// Query returns the first descendant matching selector.
	Query(ctx context.Context, selector string) (Element, bool, error)
	// Parent returns the parent element, if any.
	Parent(ctx context.Context) (Element, bool, error)

	Focus(ctx context.Context) error
	// Value reads the value slot, falling back to the rendered text.
	Value(ctx context.Context) (string, error)
	SetValue(ctx context.Context, text string) error
	// InsertText runs the in-place text insertion command at the caret and
	// reports whether the page accepted it.
	InsertText(ctx context.Context, text string) (bool, error)
	// SetText replaces the element's rendered text.
	SetText(ctx context.Context, text string) error
	// Notify dispatches bubbling change notifications so page observers react
	// as if the user typed.
	Notify(ctx context.Context, events ...string) error

	Visible(ctx context.Context) (bool, error)
	Disabled(ctx context.Context) (bool, error)
	Click(ctx context.Context) error

	// TextNodes returns descendant text nodes whose text matches pattern and
	// whose parent is not an A, SCRIPT or STYLE element.
	TextNodes(ctx context.Context, pattern string) ([]TextNode, error)
}

// TextNode is a handle to a live text node.
type TextNode interface {
	Text() string
	// Replace swaps the node for the given fragments, in order.
	Replace(ctx context.Context, parts []Fragment) error
}

// Fragment is either plain text or a link when Href is set.
type Fragment struct {
	Text string
	Href string
}

// Document is a loaded page.
type Document interface {
	URL(ctx context.Context) (string, error)
	// Query returns the first element matching selector.
	Query(ctx context.Context, selector string) (Element, bool, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Selection returns the currently selected text.
	Selection(ctx context.Context) (string, error)
	// ContextTarget returns the element most recently right-clicked.
	ContextTarget(ctx context.Context) (Element, bool, error)
	// Alert shows a message to the user without blocking the page.
	Alert(ctx context.Context, message string) error
}
