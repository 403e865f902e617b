package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	pkgbrowser "github.com/pkg/browser"
)

// TabNavigator opens destinations as new tabs in the controlled browser.
type TabNavigator struct {
	Browser *rod.Browser
}

func (n TabNavigator) Open(ctx context.Context, url string) error {
	page, err := n.Browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	if _, err := page.Activate(); err != nil {
		return fmt.Errorf("activate tab: %w", err)
	}
	return nil
}

// SystemNavigator hands the URL to the operating system's default browser.
// Auto-paste only happens there if that browser is also the one being watched.
type SystemNavigator struct{}

func (SystemNavigator) Open(_ context.Context, url string) error {
	return pkgbrowser.OpenURL(url)
}
