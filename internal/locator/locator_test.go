package locator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kernel/autopaste/internal/dom/domtest"
	"github.com/kernel/autopaste/internal/locator"
	"github.com/kernel/autopaste/internal/locator/locatortest"
	"github.com/kernel/autopaste/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// appearAfter makes el appear under doc's root once selector has been
// queried n times.
func appearAfter(doc *domtest.Document, selector string, n int, el *domtest.Element) *int {
	calls := 0
	doc.OnQuery = func(s string) {
		if s != selector {
			return
		}
		calls++
		if calls == n {
			doc.Root.Append(el)
		}
	}
	return &calls
}

func TestPollingFindsEditorOnThirdAttempt(t *testing.T) {
	doc := domtest.NewDocument("https://gemini.google.com/app")
	editor := domtest.NewElement("ed", "p", ".rich-textarea p")
	appearAfter(doc, ".rich-textarea p", 3, editor)

	clock := &locatortest.Clock{}
	l := &locator.Locator{
		Policy:  locator.PollingPolicy(),
		Finders: []locator.Finder{locator.Selector(".rich-textarea p")},
		Clock:   clock,
	}
	res, err := l.Locate(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, locator.Found, res.State)
	assert.Equal(t, 3, res.Attempts)
	assert.Same(t, editor, res.Element)

	tickers := clock.Tickers()
	require.Len(t, tickers, 1)
	assert.Equal(t, 500*time.Millisecond, tickers[0].Interval)
	assert.True(t, tickers[0].Stopped())
}

func TestPollingStopsAfterExactlyMaxAttempts(t *testing.T) {
	doc := domtest.NewDocument("https://gemini.google.com/app")
	queries := 0
	doc.OnQuery = func(string) { queries++ }

	var buf strings.Builder
	clock := &locatortest.Clock{}
	l := &locator.Locator{
		Policy:  locator.PollingPolicy(),
		Finders: []locator.Finder{locator.Selector(".rich-textarea p")},
		Clock:   clock,
		Log:     logging.New(&buf, true),
	}
	res, err := l.Locate(context.Background(), doc)
	require.ErrorIs(t, err, locator.ErrTimedOut)
	assert.Equal(t, locator.TimedOut, res.State)
	assert.Equal(t, 60, res.Attempts)
	assert.Equal(t, 60, queries)
	assert.True(t, clock.Tickers()[0].Stopped())
	assert.Equal(t, 6, strings.Count(buf.String(), "still looking for editor"))
}

func TestFindersRunInPriorityOrder(t *testing.T) {
	doc := domtest.NewDocument("https://gemini.google.com/app")
	low := domtest.NewElement("low", "div", `[contenteditable="true"]`)
	high := domtest.NewElement("high", "p", ".rich-textarea p")
	doc.Root.Append(low, high)

	l := &locator.Locator{
		Policy: locator.PollingPolicy(),
		Finders: []locator.Finder{
			locator.Selector(".rich-textarea p"),
			locator.Selector(`[contenteditable="true"]`),
		},
		Clock: &locatortest.Clock{},
	}
	res, err := l.Locate(context.Background(), doc)
	require.NoError(t, err)
	assert.Same(t, high, res.Element)
	assert.Equal(t, ".rich-textarea p", res.Finder)
	assert.Equal(t, 1, res.Attempts)
}

func TestOneShot(t *testing.T) {
	t.Run("found after delay", func(t *testing.T) {
		doc := domtest.NewDocument("https://chatgpt.com/")
		editor := domtest.NewElement("ed", "div", "#prompt-textarea")
		doc.Root.Append(editor)

		clock := &locatortest.Clock{}
		l := &locator.Locator{
			Policy: locator.OneShotPolicy(),
			Finders: []locator.Finder{
				locator.Selector(`[contenteditable="true"]`),
				locator.Selector("#prompt-textarea"),
			},
			Clock: clock,
		}
		res, err := l.Locate(context.Background(), doc)
		require.NoError(t, err)
		assert.Same(t, editor, res.Element)
		assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clock.Afters())
		assert.Empty(t, clock.Tickers())
	})

	t.Run("single miss is final", func(t *testing.T) {
		doc := domtest.NewDocument("https://chatgpt.com/")
		queries := 0
		doc.OnQuery = func(string) { queries++ }

		l := &locator.Locator{
			Policy:  locator.OneShotPolicy(),
			Finders: []locator.Finder{locator.Selector("#prompt-textarea")},
			Clock:   &locatortest.Clock{},
		}
		res, err := l.Locate(context.Background(), doc)
		require.ErrorIs(t, err, locator.ErrNotFound)
		assert.Equal(t, 1, res.Attempts)
		assert.Equal(t, 1, queries)
	})
}

func TestFirstVisibleSkipsHidden(t *testing.T) {
	doc := domtest.NewDocument("https://chatgpt.com/")
	hidden := domtest.NewElement("a", "textarea", "textarea")
	hidden.Hidden = true
	shown := domtest.NewElement("b", "textarea", "textarea")
	doc.Root.Append(hidden, shown)

	el, ok, err := locator.FirstVisible("textarea").Find(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, shown, el)
}

func TestLocateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &locator.Locator{
		Policy:  locator.PollingPolicy(),
		Finders: []locator.Finder{locator.Selector("x")},
		Clock:   locator.RealClock{},
	}
	_, err := l.Locate(ctx, domtest.NewDocument("about:blank"))
	require.ErrorIs(t, err, context.Canceled)
}
