package inject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/dom/domtest"
	"github.com/kernel/autopaste/internal/handoff"
	"github.com/kernel/autopaste/internal/settings"
)

type fakeNavigator struct {
	urls []string
}

func (f *fakeNavigator) Open(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func newHandler() (*Handler, *settings.Settings, *fakeNavigator) {
	s := settings.New(settings.NewMemoryKV())
	nav := &fakeNavigator{}
	return &Handler{Channel: &handoff.Channel{Store: s, Navigator: nav}}, s, nav
}

func sourcePage() (*domtest.Document, *domtest.Element, *domtest.Element) {
	doc := domtest.NewDocument("https://gd.myftp.org/lb/gpt.asp")
	row := domtest.NewElement("row", "div")
	btn := domtest.NewElement("btn", "button")
	row.Append(btn)
	doc.Root.Append(row)
	return doc, row, btn
}

func TestButtonSendsFieldText(t *testing.T) {
	ctx := context.Background()
	h, s, nav := newHandler()
	doc, row, btn := sourcePage()
	ta := domtest.NewElement("ta", "textarea", "textarea", `textarea, input[type="text"]`)
	ta.HasValue, ta.Val = true, "2330 台積電\n\n說明業務"
	row.Append(ta)

	require.NoError(t, h.Button(ctx, doc, btn, destination.ChatGPT))
	assert.Equal(t, []string{"https://chatgpt.com/"}, nav.urls)
	assert.Empty(t, doc.AlertLog())

	rec, err := s.Handoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2330 台積電\n\n說明業務", rec.PendingText)
	assert.True(t, rec.AutoPasteEnabled)
}

func TestButtonAlerts(t *testing.T) {
	tests := []struct {
		name    string
		variant destination.Variant
		setup   func(doc *domtest.Document, row *domtest.Element)
		alert   string
	}{
		{
			name:    "empty field",
			variant: destination.Gemini,
			setup: func(_ *domtest.Document, row *domtest.Element) {
				ta := domtest.NewElement("ta", "textarea", "textarea", `textarea, input[type="text"]`)
				ta.HasValue = true
				row.Append(ta)
			},
			alert: AlertEmptyField,
		},
		{
			name:    "gemini with nothing to send",
			variant: destination.Gemini,
			setup:   func(*domtest.Document, *domtest.Element) {},
			alert:   AlertNoContent,
		},
		{
			name:    "chatgpt without textarea",
			variant: destination.ChatGPT,
			setup: func(doc *domtest.Document, _ *domtest.Element) {
				doc.SelectionText = "ignored for chatgpt"
			},
			alert: AlertNoTextarea,
		},
		{
			name:    "whitespace only",
			variant: destination.Gemini,
			setup: func(_ *domtest.Document, row *domtest.Element) {
				ta := domtest.NewElement("ta", "textarea", "textarea", `textarea, input[type="text"]`)
				ta.HasValue, ta.Val = true, "  \n "
				row.Append(ta)
			},
			alert: AlertEmptyField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, nav := newHandler()
			doc, row, btn := sourcePage()
			tt.setup(doc, row)

			require.NoError(t, h.Button(context.Background(), doc, btn, tt.variant))
			assert.Equal(t, []string{tt.alert}, doc.AlertLog())
			assert.Empty(t, nav.urls)

			keys, err := s.KV().Keys(context.Background())
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestButtonGeminiUsesSelection(t *testing.T) {
	h, _, nav := newHandler()
	doc, _, btn := sourcePage()
	doc.SelectionText = "selected"

	require.NoError(t, h.Button(context.Background(), doc, btn, destination.Gemini))
	assert.Equal(t, []string{destination.Gemini.URL}, nav.urls)
}

func TestContextMenu(t *testing.T) {
	ctx := context.Background()

	t.Run("selection", func(t *testing.T) {
		h, s, nav := newHandler()
		doc := domtest.NewDocument("https://example.com")
		require.NoError(t, h.ContextMenu(ctx, doc, destination.Gemini, "Explain Q3 results"))
		assert.Equal(t, []string{destination.Gemini.URL}, nav.urls)
		rec, err := s.Handoff(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Explain Q3 results", rec.PendingText)
	})

	t.Run("nothing captured is silent", func(t *testing.T) {
		h, _, nav := newHandler()
		doc := domtest.NewDocument("https://example.com")
		require.NoError(t, h.ContextMenu(ctx, doc, destination.Gemini, ""))
		assert.Empty(t, nav.urls)
		assert.Empty(t, doc.AlertLog())
	})
}
