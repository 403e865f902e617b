package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Tabs lists the browser's page targets.
func Tabs(ctx context.Context, b *rod.Browser) ([]*Page, error) {
	list, err := b.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	out := make([]*Page, 0, len(list))
	for _, p := range list {
		out = append(out, NewPage(p))
	}
	return out, nil
}

// ActiveTab returns the tab the user is looking at: the first one whose
// document is visible, or the first tab when none reports visibility.
func ActiveTab(ctx context.Context, b *rod.Browser) (*Page, error) {
	tabs, err := Tabs(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(tabs) == 0 {
		return nil, fmt.Errorf("browser has no open tabs")
	}
	for _, t := range tabs {
		res, err := t.page.Context(ctx).Eval(`() => document.visibilityState === 'visible' && document.hasFocus()`)
		if err == nil && res.Value.Bool() {
			return t, nil
		}
	}
	return tabs[0], nil
}

// OpenTab opens url in a new foreground tab and waits for it to load.
func OpenTab(ctx context.Context, b *rod.Browser, url string) (*Page, error) {
	p, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	if _, err := p.Activate(); err != nil {
		return nil, fmt.Errorf("activate tab: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", url, err)
	}
	return NewPage(p), nil
}
