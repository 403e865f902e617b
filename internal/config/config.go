// Package config resolves autopaste settings from defaults, a .env file, a
// YAML file and the environment, in that order. Command line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BrowserMode selects how autopaste reaches a browser.
type BrowserMode string

const (
	// ModeAuto connects to ControlURL when set and launches Chrome otherwise.
	ModeAuto   BrowserMode = "auto"
	ModeLocal  BrowserMode = "local"
	ModeRemote BrowserMode = "remote"
	ModeKernel BrowserMode = "kernel"
)

// Config is the resolved configuration.
type Config struct {
	// StorePath is the settings database.
	StorePath string  `yaml:"store"`
	Browser   Browser `yaml:"browser"`
	Kernel    Kernel  `yaml:"kernel"`
	// Debug is nil unless set explicitly; the store's debugEnabled applies otherwise.
	Debug *bool `yaml:"debug"`
}

// Browser configures the controlled Chrome.
type Browser struct {
	Mode        BrowserMode `yaml:"mode"`
	ControlURL  string      `yaml:"control_url"`
	Bin         string      `yaml:"bin"`
	Headless    bool        `yaml:"headless"`
	UserDataDir string      `yaml:"user_data_dir"`
	Profile     string      `yaml:"profile"`
}

// Kernel configures cloud browsers.
type Kernel struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Stealth bool          `yaml:"stealth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StorePath: defaultStorePath(),
		Browser: Browser{
			Mode:    ModeAuto,
			Profile: "Default",
		},
		Kernel: Kernel{Timeout: 10 * time.Minute},
	}
}

// DefaultPath is the YAML file read when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "autopaste", "config.yaml")
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "autopaste.db"
	}
	return filepath.Join(dir, "autopaste", "settings.db")
}

// Load builds a Config. An empty path means DefaultPath; a missing default
// file is not an error, a missing explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("AUTOPASTE_STORE"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("AUTOPASTE_CONTROL_URL"); v != "" {
		c.Browser.ControlURL = v
	}
	if v := os.Getenv("AUTOPASTE_CHROME_BIN"); v != "" {
		c.Browser.Bin = v
	}
	if v := os.Getenv("AUTOPASTE_PROFILE"); v != "" {
		c.Browser.Profile = v
	}
	if v := os.Getenv("AUTOPASTE_BROWSER"); v != "" {
		c.Browser.Mode = BrowserMode(v)
	}
	if v := os.Getenv("AUTOPASTE_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTOPASTE_HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}
	if v := os.Getenv("KERNEL_API_KEY"); v != "" {
		c.Kernel.APIKey = v
	}
	if v := os.Getenv("KERNEL_BASE_URL"); v != "" {
		c.Kernel.BaseURL = v
	}
	return nil
}

// Validate checks field combinations.
func (c Config) Validate() error {
	switch c.Browser.Mode {
	case ModeAuto, ModeLocal:
	case ModeRemote:
		if c.Browser.ControlURL == "" {
			return errors.New("browser mode remote requires a control URL")
		}
	case ModeKernel:
		if c.Kernel.APIKey == "" {
			return errors.New("browser mode kernel requires KERNEL_API_KEY")
		}
	default:
		return fmt.Errorf("unknown browser mode %q", c.Browser.Mode)
	}
	if c.StorePath == "" {
		return errors.New("store path is empty")
	}
	return nil
}
