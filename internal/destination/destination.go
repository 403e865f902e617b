// Package destination describes the AI chat pages autopaste delivers text to.
// The two variants are intentionally not symmetric.
package destination

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/kernel/autopaste/internal/locator"
)

// Variant is the per-destination configuration.
type Variant struct {
	Name string
	// URL is opened by the handoff.
	URL string
	// Host is what page URLs are matched on.
	Host    string
	Locator locator.Policy
	Finders []locator.Finder
	// InsertCommand selects the in-place insert path for rich editors.
	InsertCommand bool
	Notify        []string
	Submit        bool
}

var (
	Gemini = Variant{
		Name:    "gemini",
		URL:     "https://gemini.google.com/app",
		Host:    "gemini.google.com",
		Locator: locator.PollingPolicy(),
		Finders: []locator.Finder{
			locator.Selector(".rich-textarea p"),
			locator.Selector(`[contenteditable="true"]`),
			locator.Selector(".input-area textarea"),
		},
		InsertCommand: true,
		Notify:        []string{"input", "change"},
		Submit:        true,
	}

	ChatGPT = Variant{
		Name:    "chatgpt",
		URL:     "https://chatgpt.com/",
		Host:    "chatgpt.com",
		Locator: locator.OneShotPolicy(),
		Finders: []locator.Finder{
			locator.Selector(`[contenteditable="true"]`),
			locator.Selector("#prompt-textarea"),
			locator.FirstVisible("textarea"),
		},
		InsertCommand: false,
		Notify:        []string{"input", "change", "keyup", "keydown"},
		Submit:        false,
	}
)

// All lists every variant.
func All() []Variant {
	return []Variant{Gemini, ChatGPT}
}

// Names lists the variant names, for flag help.
func Names() []string {
	return lo.Map(All(), func(v Variant, _ int) string { return v.Name })
}

// ByName resolves a --target value.
func ByName(name string) (Variant, error) {
	v, ok := lo.Find(All(), func(v Variant) bool {
		return strings.EqualFold(v.Name, strings.TrimSpace(name))
	})
	if !ok {
		return Variant{}, fmt.Errorf("unknown target %q (expected one of: %s)", name, strings.Join(Names(), ", "))
	}
	return v, nil
}

// Match returns the variant whose host serves rawURL.
func Match(rawURL string) (Variant, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Variant{}, false
	}
	host := strings.ToLower(u.Hostname())
	return lo.Find(All(), func(v Variant) bool {
		return host == v.Host || strings.HasSuffix(host, "."+v.Host)
	})
}
