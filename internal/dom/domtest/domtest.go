// Package domtest provides in-memory dom.Document and dom.Element fakes.
//
// Selectors are not parsed: an element matches a selector when the selector
// appears verbatim in its Selectors list.
package domtest

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kernel/autopaste/internal/dom"
)

// Element is a fake element.
type Element struct {
	mu sync.Mutex

	NodeID    dom.NodeID
	Tag       string
	Selectors []string

	HasValue   bool
	Editable   bool
	Val        string
	Text       string
	Hidden     bool
	IsDisabled bool

	// InsertAccepted is what InsertText reports; InsertErr makes it fail.
	InsertAccepted bool
	InsertErr      error

	children []*Element
	parent   *Element
	nodes    []*TextNode

	Events        []string
	Clicks        int
	Focuses       int
	SetValueCalls int
	InsertCalls   int
	SetTextCalls  int
}

// NewElement returns an element matching the given selectors.
func NewElement(id, tag string, selectors ...string) *Element {
	return &Element{NodeID: dom.NodeID(id), Tag: tag, Selectors: selectors}
}

// Append adds children and returns e.
func (e *Element) Append(children ...*Element) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range children {
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

// AddText adds a text node under e whose parent tag is parentTag.
func (e *Element) AddText(text, parentTag string) *TextNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := &TextNode{text: text, ParentTag: strings.ToUpper(parentTag)}
	e.nodes = append(e.nodes, n)
	return n
}

// Snapshot returns the recorded counters under lock.
func (e *Element) Snapshot() Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Element{
		Val:           e.Val,
		Text:          e.Text,
		Events:        slices.Clone(e.Events),
		Clicks:        e.Clicks,
		Focuses:       e.Focuses,
		SetValueCalls: e.SetValueCalls,
		InsertCalls:   e.InsertCalls,
		SetTextCalls:  e.SetTextCalls,
	}
}

func (e *Element) matches(selector string) bool {
	return slices.Contains(e.Selectors, selector)
}

func (e *Element) find(selector string) *Element {
	e.mu.Lock()
	children := slices.Clone(e.children)
	e.mu.Unlock()
	for _, c := range children {
		if c.matches(selector) {
			return c
		}
		if found := c.find(selector); found != nil {
			return found
		}
	}
	return nil
}

func (e *Element) findAll(selector string, out []*Element) []*Element {
	e.mu.Lock()
	children := slices.Clone(e.children)
	e.mu.Unlock()
	for _, c := range children {
		if c.matches(selector) {
			out = append(out, c)
		}
		out = c.findAll(selector, out)
	}
	return out
}

func (e *Element) ID(context.Context) (dom.NodeID, error) { return e.NodeID, nil }

func (e *Element) Capabilities(context.Context) (dom.Capabilities, error) {
	return dom.Capabilities{Tag: e.Tag, HasValue: e.HasValue, Editable: e.Editable}, nil
}

func (e *Element) Query(_ context.Context, selector string) (dom.Element, bool, error) {
	if found := e.find(selector); found != nil {
		return found, true, nil
	}
	return nil, false, nil
}

func (e *Element) Parent(context.Context) (dom.Element, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parent == nil {
		return nil, false, nil
	}
	return e.parent, true, nil
}

func (e *Element) Focus(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Focuses++
	return nil
}

func (e *Element) Value(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.HasValue && e.Val != "" {
		return e.Val, nil
	}
	return e.Text, nil
}

func (e *Element) SetValue(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SetValueCalls++
	e.Val = text
	return nil
}

func (e *Element) InsertText(_ context.Context, text string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.InsertCalls++
	if e.InsertErr != nil {
		return false, e.InsertErr
	}
	if e.InsertAccepted {
		e.Text += text
	}
	return e.InsertAccepted, nil
}

func (e *Element) SetText(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SetTextCalls++
	e.Text = text
	return nil
}

func (e *Element) Notify(_ context.Context, events ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, events...)
	return nil
}

func (e *Element) Visible(context.Context) (bool, error) { return !e.Hidden, nil }

func (e *Element) Disabled(context.Context) (bool, error) { return e.IsDisabled, nil }

func (e *Element) Click(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Clicks++
	return nil
}

func (e *Element) TextNodes(_ context.Context, pattern string) ([]dom.TextNode, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []dom.TextNode
	e.collectText(re, &out)
	return out, nil
}

func (e *Element) collectText(re *regexp.Regexp, out *[]dom.TextNode) {
	e.mu.Lock()
	nodes := slices.Clone(e.nodes)
	children := slices.Clone(e.children)
	e.mu.Unlock()
	for _, n := range nodes {
		if n.replaced() {
			continue
		}
		switch n.ParentTag {
		case "A", "SCRIPT", "STYLE":
			continue
		}
		if re.MatchString(n.Text()) {
			*out = append(*out, n)
		}
	}
	for _, c := range children {
		c.collectText(re, out)
	}
}

// TextNode is a fake text node.
type TextNode struct {
	mu        sync.Mutex
	text      string
	ParentTag string
	parts     []dom.Fragment
	done      bool
}

func (n *TextNode) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

func (n *TextNode) Replace(_ context.Context, parts []dom.Fragment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.done {
		return errors.New("node already replaced")
	}
	n.parts = slices.Clone(parts)
	n.done = true
	return nil
}

// Fragments returns what the node was replaced with, or nil.
func (n *TextNode) Fragments() []dom.Fragment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.parts)
}

func (n *TextNode) replaced() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.done
}

// Document is a fake page rooted at Root.
type Document struct {
	mu sync.Mutex

	PageURL       string
	Root          *Element
	SelectionText string
	Target        *Element

	Alerts []string

	// OnQuery runs before every document-level query; tests use it to make
	// elements appear after a number of polls.
	OnQuery func(selector string)
}

// NewDocument returns a document at url with an empty body.
func NewDocument(url string) *Document {
	return &Document{PageURL: url, Root: NewElement("root", "body", "body")}
}

func (d *Document) URL(context.Context) (string, error) { return d.PageURL, nil }

func (d *Document) Query(ctx context.Context, selector string) (dom.Element, bool, error) {
	if d.OnQuery != nil {
		d.OnQuery(selector)
	}
	if d.Root.matches(selector) {
		return d.Root, true, nil
	}
	return d.Root.Query(ctx, selector)
}

func (d *Document) QueryAll(_ context.Context, selector string) ([]dom.Element, error) {
	if d.OnQuery != nil {
		d.OnQuery(selector)
	}
	var out []dom.Element
	for _, e := range d.Root.findAll(selector, nil) {
		out = append(out, e)
	}
	return out, nil
}

func (d *Document) Selection(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SelectionText, nil
}

func (d *Document) ContextTarget(context.Context) (dom.Element, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Target == nil {
		return nil, false, nil
	}
	return d.Target, true, nil
}

func (d *Document) Alert(_ context.Context, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Alerts = append(d.Alerts, message)
	return nil
}

// AlertLog returns the alerts shown so far.
func (d *Document) AlertLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.Alerts)
}
