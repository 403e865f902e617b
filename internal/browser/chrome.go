package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// ChromeUserDataDir returns the Chrome user data directory for the current OS.
func ChromeUserDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	userDataDir := chromeUserDataDirFor(runtime.GOOS, homeDir, os.Getenv("LOCALAPPDATA"))
	if userDataDir == "" {
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
	if _, err := os.Stat(userDataDir); os.IsNotExist(err) {
		return "", fmt.Errorf("Chrome user data directory not found at %s", userDataDir)
	}
	return userDataDir, nil
}

func chromeUserDataDirFor(goos, homeDir, localAppData string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "Google", "Chrome")
	case "linux":
		return filepath.Join(homeDir, ".config", "google-chrome")
	case "windows":
		if localAppData == "" {
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "Google", "Chrome", "User Data")
	}
	return ""
}

// ListChromeProfiles returns the profile directories under userDataDir.
// Chrome names them "Default", "Profile 1", "Profile 2", ... and each has a
// Preferences file.
func ListChromeProfiles(userDataDir string) ([]string, error) {
	entries, err := os.ReadDir(userDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read Chrome user data directory: %w", err)
	}

	var profiles []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name != "Default" && !strings.HasPrefix(name, "Profile ") {
			continue
		}
		if _, err := os.Stat(filepath.Join(userDataDir, name, "Preferences")); err == nil {
			profiles = append(profiles, name)
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}

// ResolveProfile checks that profile exists under userDataDir.
func ResolveProfile(userDataDir, profile string) (string, error) {
	if profile == "" {
		profile = "Default"
	}
	profiles, err := ListChromeProfiles(userDataDir)
	if err != nil {
		return "", err
	}
	for _, p := range profiles {
		if p == profile {
			return p, nil
		}
	}
	return "", fmt.Errorf("Chrome profile %q not found in %s (available: %s)", profile, userDataDir, strings.Join(profiles, ", "))
}
