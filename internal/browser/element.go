package browser

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/kernel/autopaste/internal/dom"
)

// element implements dom.Element over a rod element handle.
type element struct {
	el *rod.Element
}

func (e *element) eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	res, err := e.el.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// ID tags the node with a random identity on first use.
func (e *element) ID(ctx context.Context) (dom.NodeID, error) {
	v, err := e.eval(ctx, `() => {
		if (!this.__autopasteId) this.__autopasteId = crypto.randomUUID();
		(window.__autopasteTracked = window.__autopasteTracked || new Set()).add(this);
		return this.__autopasteId;
	}`)
	if err != nil {
		return "", err
	}
	return dom.NodeID(v.Str()), nil
}

func (e *element) Capabilities(ctx context.Context) (dom.Capabilities, error) {
	v, err := e.eval(ctx, `() => {
		const tag = this.tagName.toLowerCase();
		return {
			tag,
			hasValue: (tag === 'textarea' || tag === 'input') && typeof this.value === 'string',
			editable: !!this.isContentEditable,
		};
	}`)
	if err != nil {
		return dom.Capabilities{}, err
	}
	return dom.Capabilities{
		Tag:      v.Get("tag").Str(),
		HasValue: v.Get("hasValue").Bool(),
		Editable: v.Get("editable").Bool(),
	}, nil
}

func (e *element) Query(ctx context.Context, selector string) (dom.Element, bool, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil || els.Empty() {
		return nil, false, err
	}
	return &element{el: els.First()}, true, nil
}

func (e *element) Parent(ctx context.Context) (dom.Element, bool, error) {
	v, err := e.eval(ctx, `() => this.parentElement !== null`)
	if err != nil || !v.Bool() {
		return nil, false, err
	}
	p, err := e.el.Context(ctx).Parent()
	if err != nil {
		return nil, false, err
	}
	return &element{el: p}, true, nil
}

func (e *element) Focus(ctx context.Context) error {
	return e.el.Context(ctx).Focus()
}

func (e *element) Value(ctx context.Context) (string, error) {
	v, err := e.eval(ctx, `() => this.value || this.innerText || ''`)
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *element) SetValue(ctx context.Context, text string) error {
	_, err := e.eval(ctx, `t => { this.value = t }`, text)
	return err
}

func (e *element) InsertText(ctx context.Context, text string) (bool, error) {
	v, err := e.eval(ctx, `t => {
		this.focus();
		return document.execCommand('insertText', false, t);
	}`, text)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func (e *element) SetText(ctx context.Context, text string) error {
	_, err := e.eval(ctx, `t => { this.innerText = t }`, text)
	return err
}

func (e *element) Notify(ctx context.Context, events ...string) error {
	_, err := e.eval(ctx, `names => {
		for (const name of names) {
			const ev = name.startsWith('key')
				? new KeyboardEvent(name, { bubbles: true })
				: new Event(name, { bubbles: true });
			this.dispatchEvent(ev);
		}
	}`, events)
	return err
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *element) Disabled(ctx context.Context) (bool, error) {
	v, err := e.eval(ctx, `() => !!this.disabled`)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// Click uses the DOM click so an overlapping element cannot swallow it.
func (e *element) Click(ctx context.Context) error {
	_, err := e.eval(ctx, `() => this.click()`)
	return err
}

func (e *element) TextNodes(ctx context.Context, pattern string) ([]dom.TextNode, error) {
	nodes, err := e.el.Context(ctx).ElementsByJS(rod.Eval(textNodesScript, pattern))
	if err != nil {
		return nil, err
	}
	out := make([]dom.TextNode, 0, len(nodes))
	for _, n := range nodes {
		res, err := n.Context(ctx).Eval(`() => this.textContent`)
		if err != nil {
			return nil, err
		}
		out = append(out, &textNode{el: n, text: res.Value.Str()})
	}
	return out, nil
}

type textNode struct {
	el   *rod.Element
	text string
}

func (t *textNode) Text() string { return t.text }

type fragment struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

func (t *textNode) Replace(ctx context.Context, parts []dom.Fragment) error {
	args := make([]fragment, len(parts))
	for i, p := range parts {
		args[i] = fragment{Text: p.Text, Href: p.Href}
	}
	_, err := t.el.Context(ctx).Eval(replaceTextScript, args)
	return err
}
