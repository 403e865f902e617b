package handoff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernel/autopaste/internal/destination"
	"github.com/kernel/autopaste/internal/settings"
)

type recordingNavigator struct {
	urls []string
	err  error
}

func (r *recordingNavigator) Open(_ context.Context, url string) error {
	r.urls = append(r.urls, url)
	return r.err
}

type failingStager struct{}

func (failingStager) StageHandoff(context.Context, string) error {
	return errors.New("disk full")
}

func TestHandoffStagesThenNavigatesOnce(t *testing.T) {
	for _, v := range destination.All() {
		t.Run(v.Name, func(t *testing.T) {
			ctx := context.Background()
			s := settings.New(settings.NewMemoryKV())
			nav := &recordingNavigator{}
			ch := &Channel{Store: s, Navigator: nav}

			require.NoError(t, ch.Handoff(ctx, v, "Explain Q3 results"))
			assert.Equal(t, []string{v.URL}, nav.urls)

			rec, err := s.Handoff(ctx)
			require.NoError(t, err)
			assert.Equal(t, settings.HandoffRecord{PendingText: "Explain Q3 results", AutoPasteEnabled: true}, rec)
		})
	}
}

func TestHandoffBlankTextDoesNothing(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t \r\n"} {
		kv := settings.NewMemoryKV()
		nav := &recordingNavigator{}
		ch := &Channel{Store: settings.New(kv), Navigator: nav}

		err := ch.Handoff(context.Background(), destination.Gemini, text)
		require.ErrorIs(t, err, ErrNoText)
		assert.Empty(t, nav.urls)
		keys, err := kv.Keys(context.Background())
		require.NoError(t, err)
		assert.Empty(t, keys)
	}
}

func TestHandoffWriteFailureSkipsNavigation(t *testing.T) {
	nav := &recordingNavigator{}
	ch := &Channel{Store: failingStager{}, Navigator: nav}

	err := ch.Handoff(context.Background(), destination.ChatGPT, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, nav.urls)
}

func TestHandoffNavigationErrorIsReturned(t *testing.T) {
	nav := &recordingNavigator{err: errors.New("no browser")}
	ch := &Channel{Store: settings.New(settings.NewMemoryKV()), Navigator: nav}

	err := ch.Handoff(context.Background(), destination.Gemini, "hello")
	require.Error(t, err)
	assert.Len(t, nav.urls, 1)
}
