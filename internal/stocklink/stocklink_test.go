package stocklink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernel/autopaste/internal/dom"
	"github.com/kernel/autopaste/internal/dom/domtest"
	"github.com/kernel/autopaste/internal/paste"
	"github.com/kernel/autopaste/internal/settings"
)

func link(n string) dom.Fragment { return dom.Fragment{Text: n, Href: QuoteURL + n} }
func text(s string) dom.Fragment { return dom.Fragment{Text: s} }

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []dom.Fragment
	}{
		{"2330", []dom.Fragment{link("2330")}},
		{"台積電(2330)與聯發科 2454。", []dom.Fragment{text("台積電("), link("2330"), text(")與聯發科 "), link("2454"), text("。")}},
		{"台積電2330", []dom.Fragment{text("台積電"), link("2330")}},
		{"2024年營收", nil},
		{"2024.05", nil},
		{"2024-05-01", nil},
		{"05/2024", nil},
		{"1,2345", nil},
		{"12345", nil},
		{"A2330", nil},
		{"2330_tw", nil},
		{"no numbers", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestRewriterToggle(t *testing.T) {
	ctx := context.Background()
	s := settings.New(settings.NewMemoryKV())
	r := &Rewriter{Settings: s}
	load := paste.NewPageLoad("https://gemini.google.com/app")

	first := domtest.NewElement("reply-1", "div")
	n1 := first.AddText("推薦 2330 與 2454", "p")
	n, err := r.ProcessBatch(ctx, load, []dom.Element{first})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	converted := n1.Fragments()
	require.Len(t, converted, 4)

	require.NoError(t, s.SetToggle(ctx, settings.ToggleStockLink, false))
	second := domtest.NewElement("reply-2", "div")
	n2 := second.AddText("再看 3008", "p")
	n, err = r.ProcessBatch(ctx, load, []dom.Element{second})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, n2.Fragments())
	assert.Equal(t, converted, n1.Fragments(), "links made earlier stay")

	require.NoError(t, s.SetToggle(ctx, settings.ToggleStockLink, true))
	third := domtest.NewElement("reply-3", "div")
	n3 := third.AddText("以及 2317", "p")
	n, err = r.ProcessBatch(ctx, load, []dom.Element{third})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []dom.Fragment{text("以及 "), link("2317")}, n3.Fragments())
	assert.Nil(t, n2.Fragments(), "content added while off is not revisited")
}

func TestRewriterSkipsLinksScriptsAndSeenRoots(t *testing.T) {
	ctx := context.Background()
	r := &Rewriter{Settings: settings.New(settings.NewMemoryKV())}
	load := paste.NewPageLoad("https://gemini.google.com/app")

	root := domtest.NewElement("reply", "div")
	inLink := root.AddText("2330", "a")
	inScript := root.AddText("var x = 2330", "script")
	plain := root.AddText("2330", "span")

	n, err := r.ProcessBatch(ctx, load, []dom.Element{root, root})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Nil(t, inLink.Fragments())
	assert.Nil(t, inScript.Fragments())
	assert.Equal(t, []dom.Fragment{link("2330")}, plain.Fragments())
}
