package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearDiscardsStagedText(t *testing.T) {
	setupStdoutCapture(t)
	ctx := context.Background()
	s := newMemorySettings()
	require.NoError(t, s.StageHandoff(ctx, "Explain Q3 results"))

	require.NoError(t, ClearCmd{settings: s}.Clear(ctx))

	rec, err := s.Handoff(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Empty())
	assert.False(t, rec.AutoPasteEnabled)
	assert.Contains(t, outBuf.String(), "Discarded 18 staged characters")
}

func TestClearWithNothingStaged(t *testing.T) {
	setupStdoutCapture(t)
	require.NoError(t, ClearCmd{settings: newMemorySettings()}.Clear(context.Background()))
	assert.Contains(t, outBuf.String(), "Nothing was staged")
}
