package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernel/autopaste/internal/config"
)

type FakeBrowserVersioner struct {
	VersionFunc func(ctx context.Context) (string, string, error)
}

func (f *FakeBrowserVersioner) Version(ctx context.Context) (string, string, error) {
	if f.VersionFunc != nil {
		return f.VersionFunc(ctx)
	}
	return "Chrome/120.0.6099.109", "120.0.6099.109", nil
}

func TestChromeVersionOK(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"120.0.6099.109", true},
		{"92.0.4515.107", true},
		{"92", true},
		{"91.0.4472.124", false},
		{"not-a-version", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			ok, _ := chromeVersionOK(tt.version)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestDoctorAllGood(t *testing.T) {
	setupStdoutCapture(t)
	cfg := config.Default()
	cfg.StorePath = "/tmp/settings.db"

	c := DoctorCmd{cfg: cfg, browser: &FakeBrowserVersioner{}}
	require.NoError(t, c.Check(context.Background()))

	out := outBuf.String()
	assert.Contains(t, out, "Chrome/120.0.6099.109")
	assert.Contains(t, out, "Everything looks good")
}

func TestDoctorOldChrome(t *testing.T) {
	setupStdoutCapture(t)
	c := DoctorCmd{cfg: config.Default(), browser: &FakeBrowserVersioner{
		VersionFunc: func(ctx context.Context) (string, string, error) {
			return "HeadlessChrome/88.0.4324.150", "88.0.4324.150", nil
		},
	}}

	err := c.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 check(s) failed")
	assert.Contains(t, outBuf.String(), "older than "+MinChromeVersion)
}

func TestDoctorUnreachableBrowser(t *testing.T) {
	setupStdoutCapture(t)
	c := DoctorCmd{cfg: config.Default(), connectErr: errors.New("connection refused")}

	err := c.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, outBuf.String(), "connection refused")
}
