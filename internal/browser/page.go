package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kernel/autopaste/internal/dom"
)

// triggerAttr marks the host button whose injected icon was clicked.
const triggerAttr = "data-autopaste-trigger"

// Page is a rod page seen through the dom contract.
type Page struct {
	page *rod.Page
}

// NewPage wraps p.
func NewPage(p *rod.Page) *Page {
	return &Page{page: p}
}

// Rod exposes the underlying page.
func (p *Page) Rod() *rod.Page { return p.page }

func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *Page) Query(ctx context.Context, selector string) (dom.Element, bool, error) {
	ok, el, err := p.page.Context(ctx).Has(selector)
	if err != nil || !ok {
		return nil, false, err
	}
	return &element{el: el}, true, nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

func (p *Page) Selection(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => String(window.getSelection() || '')`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *Page) ContextTarget(ctx context.Context) (dom.Element, bool, error) {
	return p.elementByGlobal(ctx, "__autopasteContextTarget")
}

// Alert defers the dialog so the evaluation returns before it blocks.
func (p *Page) Alert(ctx context.Context, message string) error {
	_, err := p.page.Context(ctx).Eval(`m => { setTimeout(() => alert(m), 0) }`, message)
	return err
}

// TakeTrigger returns the host button of the last clicked icon and clears
// its marker.
func (p *Page) TakeTrigger(ctx context.Context) (dom.Element, bool, error) {
	ok, el, err := p.page.Context(ctx).Has("[" + triggerAttr + "]")
	if err != nil || !ok {
		return nil, false, err
	}
	if _, err := el.Context(ctx).Eval(`name => this.removeAttribute(name)`, triggerAttr); err != nil {
		return nil, false, err
	}
	return &element{el: el}, true, nil
}

// DrainAdded returns the element roots the page observed being added since
// the last call, skipping any that have since left the document.
func (p *Page) DrainAdded(ctx context.Context) ([]dom.Element, error) {
	els, err := p.page.Context(ctx).ElementsByJS(rod.Eval(`() => {
		const q = window.__autopasteAdded || [];
		window.__autopasteAdded = [];
		return q.filter(n => n.isConnected);
	}`))
	if err != nil {
		return nil, err
	}
	return wrapAll(els), nil
}

// DrainRemoved returns the ids of tagged nodes that left the document since
// the last call.
func (p *Page) DrainRemoved(ctx context.Context) ([]dom.NodeID, error) {
	res, err := p.page.Context(ctx).Eval(`() => {
		const q = window.__autopasteRemoved || [];
		window.__autopasteRemoved = [];
		return q;
	}`)
	if err != nil {
		return nil, err
	}
	arr := res.Value.Arr()
	ids := make([]dom.NodeID, 0, len(arr))
	for _, v := range arr {
		ids = append(ids, dom.NodeID(v.Str()))
	}
	return ids, nil
}

// Body returns the document body.
func (p *Page) Body(ctx context.Context) (dom.Element, bool, error) {
	return p.Query(ctx, "body")
}

// Install evaluates script in the current document and every later one.
func (p *Page) Install(ctx context.Context, script string) error {
	pg := p.page.Context(ctx)
	if _, err := pg.EvalOnNewDocument(script); err != nil {
		return fmt.Errorf("register script: %w", err)
	}
	if _, err := (proto.RuntimeEvaluate{Expression: script}).Call(pg); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

func (p *Page) elementByGlobal(ctx context.Context, name string) (dom.Element, bool, error) {
	pg := p.page.Context(ctx)
	res, err := pg.Eval(`name => !!(window[name] && window[name].isConnected)`, name)
	if err != nil {
		return nil, false, err
	}
	if !res.Value.Bool() {
		return nil, false, nil
	}
	el, err := pg.ElementByJS(rod.Eval(`name => window[name]`, name))
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &element{el: el}, true, nil
}

func wrapAll(els rod.Elements) []dom.Element {
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out
}
