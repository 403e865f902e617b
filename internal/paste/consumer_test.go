package paste

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kernel/autopaste/internal/dom/domtest"
	"github.com/kernel/autopaste/internal/insertion"
	"github.com/kernel/autopaste/internal/locator/locatortest"
	"github.com/kernel/autopaste/internal/settings"
	"github.com/kernel/autopaste/internal/submit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	kv       *settings.MemoryKV
	settings *settings.Settings
	clock    *locatortest.Clock
	consumer *Consumer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := settings.NewMemoryKV()
	s := settings.New(kv)
	clock := &locatortest.Clock{}
	return &fixture{
		kv:       kv,
		settings: s,
		clock:    clock,
		consumer: &Consumer{Settings: s, Clock: clock},
	}
}

func geminiPage() (*domtest.Document, *domtest.Element, *domtest.Element) {
	doc := domtest.NewDocument("https://gemini.google.com/app")
	editor := domtest.NewElement("editor", "p", ".rich-textarea p", `[contenteditable="true"]`)
	editor.Editable = true
	editor.InsertAccepted = true
	send := domtest.NewElement("send", "button", `button[aria-label*="Send"]`)
	return doc, editor, send
}

func TestConsumeGeminiEditorOnThirdPoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	doc, editor, send := geminiPage()
	doc.Root.Append(send)
	polls := 0
	doc.OnQuery = func(sel string) {
		if sel != ".rich-textarea p" {
			return
		}
		polls++
		if polls == 3 {
			doc.Root.Append(editor)
		}
	}

	rep, err := f.consumer.Consume(ctx, NewPageLoad("https://gemini.google.com/app"), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomePasted, rep.Outcome)
	assert.Equal(t, 3, rep.Attempts)
	assert.Equal(t, insertion.PathCommand, rep.Insertion.Path)
	assert.Equal(t, submit.Clicked, rep.Submit)
	assert.False(t, rep.Stale)

	snap := editor.Snapshot()
	assert.Equal(t, 1, snap.InsertCalls)
	assert.Equal(t, "Explain Q3 results", snap.Text)
	assert.Equal(t, []string{"input", "change"}, snap.Events)
	assert.Equal(t, 1, send.Snapshot().Clicks)

	keys, err := f.kv.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestConsumeIsLatchedPerPageLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	doc, editor, send := geminiPage()
	doc.Root.Append(editor, send)
	load := NewPageLoad(doc.PageURL)

	// load, mutation and timer triggers racing on the same load
	var wg sync.WaitGroup
	outcomes := make([]Outcome, 3)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rep, err := f.consumer.Consume(ctx, load, doc)
			assert.NoError(t, err)
			outcomes[i] = rep.Outcome
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []Outcome{OutcomePasted, OutcomeDuplicate, OutcomeDuplicate}, outcomes)
	assert.Equal(t, 1, editor.Snapshot().InsertCalls)
	assert.Equal(t, 1, send.Snapshot().Clicks)
}

func TestConsumeNextLoadFindsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	doc, editor, send := geminiPage()
	doc.Root.Append(editor, send)
	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	require.Equal(t, OutcomePasted, rep.Outcome)

	rep, err = f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoPending, rep.Outcome)
	assert.Equal(t, 1, editor.Snapshot().InsertCalls)
}

func TestConsumeStaleRecordLeftAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, map[string]string{
		settings.KeyPendingText:      `""`,
		settings.KeyAutoPasteEnabled: "false",
	}))

	doc, editor, _ := geminiPage()
	doc.Root.Append(editor)
	queries := 0
	doc.OnQuery = func(string) { queries++ }

	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoPending, rep.Outcome)
	assert.Zero(t, queries)

	keys, err := f.kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{settings.KeyAutoPasteEnabled, settings.KeyPendingText}, keys)
}

func TestConsumeManualOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, map[string]string{
		settings.KeyPendingText:      `"left over"`,
		settings.KeyAutoPasteEnabled: "false",
	}))
	doc, editor, _ := geminiPage()
	doc.Root.Append(editor)

	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeManualOpen, rep.Outcome)
	assert.Zero(t, editor.Snapshot().InsertCalls)
}

func TestConsumePromptOnlyIsDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.SetPrompt(ctx, "Summarise this."))
	require.NoError(t, f.settings.StageHandoff(ctx, "  Summarise this.\n"))

	doc, editor, _ := geminiPage()
	doc.Root.Append(editor)

	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomePromptOnly, rep.Outcome)
	assert.Zero(t, editor.Snapshot().InsertCalls)

	rec, err := f.settings.Handoff(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Empty())
}

func TestConsumeEditorNeverAppears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	doc := domtest.NewDocument("https://gemini.google.com/app")
	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEditorNotFound, rep.Outcome)
	assert.Equal(t, 60, rep.Attempts)

	rec, err := f.settings.Handoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Explain Q3 results", rec.PendingText)
	assert.True(t, rec.AutoPasteEnabled)
}

func TestConsumeChatGPT(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	doc := domtest.NewDocument("https://chatgpt.com/")
	editor := domtest.NewElement("editor", "div", "#prompt-textarea")
	editor.Editable = true
	send := domtest.NewElement("send", "button", `button[aria-label*="Send"]`)
	doc.Root.Append(editor, send)

	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomePasted, rep.Outcome)
	assert.Equal(t, insertion.PathText, rep.Insertion.Path)
	assert.Empty(t, rep.Submit)

	snap := editor.Snapshot()
	assert.Zero(t, snap.InsertCalls)
	assert.Equal(t, "Explain Q3 results", snap.Text)
	assert.Equal(t, []string{"input", "change", "keyup", "keydown"}, snap.Events)
	assert.Zero(t, send.Snapshot().Clicks)
}

func TestConsumeReportsStaleRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))
	f.kv.FailRemove = true

	doc, editor, send := geminiPage()
	doc.Root.Append(editor, send)
	rep, err := f.consumer.Consume(ctx, NewPageLoad(doc.PageURL), doc)
	require.NoError(t, err)
	assert.Equal(t, OutcomePasted, rep.Outcome)
	assert.True(t, rep.Stale)
	assert.Equal(t, submit.Clicked, rep.Submit)
}

func TestConsumeIgnoresOtherPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.StageHandoff(ctx, "Explain Q3 results"))

	load := NewPageLoad("https://example.com/")
	rep, err := f.consumer.Consume(ctx, load, domtest.NewDocument("https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotDestination, rep.Outcome)
	assert.False(t, load.Marked())
}
