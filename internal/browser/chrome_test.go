package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeProfile(t *testing.T, root, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name, "Preferences"), []byte("{}"), 0644))
}

func TestChromeUserDataDirFor(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u", ".config", "google-chrome"), chromeUserDataDirFor("linux", "/home/u", ""))
	assert.Equal(t, filepath.Join("/Users/u", "Library", "Application Support", "Google", "Chrome"), chromeUserDataDirFor("darwin", "/Users/u", ""))
	assert.Equal(t, filepath.Join(`C:\Local`, "Google", "Chrome", "User Data"), chromeUserDataDirFor("windows", `C:\Users\u`, `C:\Local`))
	assert.Equal(t, filepath.Join(`C:\Users\u`, "AppData", "Local", "Google", "Chrome", "User Data"), chromeUserDataDirFor("windows", `C:\Users\u`, ""))
	assert.Empty(t, chromeUserDataDirFor("plan9", "/usr/u", ""))
}

func TestChromeUserDataDir(t *testing.T) {
	// Fails on machines without Chrome; only the message is checked then.
	_, err := ChromeUserDataDir()
	if err != nil {
		assert.Contains(t, err.Error(), "Chrome")
	}
}

func TestListChromeProfiles(t *testing.T) {
	root := t.TempDir()
	makeProfile(t, root, "Profile 2")
	makeProfile(t, root, "Default")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Profile 3"), 0755)) // no Preferences
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Crashpad"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Local State"), []byte("{}"), 0644))

	profiles, err := ListChromeProfiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Profile 2"}, profiles)
}

func TestResolveProfile(t *testing.T) {
	root := t.TempDir()
	makeProfile(t, root, "Default")

	p, err := ResolveProfile(root, "")
	require.NoError(t, err)
	assert.Equal(t, "Default", p)

	_, err = ResolveProfile(root, "Profile 9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: Default")

	_, err = ResolveProfile(filepath.Join(root, "missing"), "Default")
	require.Error(t, err)
}
