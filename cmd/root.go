// Package cmd implements the autopaste command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kernel/autopaste/internal/browser"
	"github.com/kernel/autopaste/internal/config"
	"github.com/kernel/autopaste/internal/logging"
	"github.com/kernel/autopaste/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "autopaste",
	Short: "Send text from any page to Gemini or ChatGPT and paste it there",
	Long: `autopaste hands text over to an AI chat page in a Chrome it controls.

Text is staged in a local settings store, the destination is opened, and the
destination page picks the text up, pastes it into the editor and (for Gemini)
submits it. Run 'autopaste watch' to keep the page side active in every tab.`,
	SilenceUsage: true,
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(pf *pflag.FlagSet) {
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/autopaste/config.yaml)")
	pf.String("store", "", "Settings database path")
	pf.Bool("debug", false, "Enable debug logging (default: the stored debug toggle)")
	pf.String("browser", "", "Browser mode: auto, local, remote or kernel")
	pf.String("control-url", "", "DevTools websocket URL of a running Chrome")
	pf.Bool("headless", false, "Launch Chrome without a window")
	pf.String("profile", "", "Chrome profile name or directory")
	pf.String("chrome-bin", "", "Chrome binary to launch")
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return fang.Execute(ctx, rootCmd, fang.WithVersion(version))
}

// loadConfig resolves the configuration and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("store") {
		cfg.StorePath, _ = flags.GetString("store")
	}
	if flags.Changed("browser") {
		mode, _ := flags.GetString("browser")
		cfg.Browser.Mode = config.BrowserMode(mode)
	}
	if flags.Changed("control-url") {
		cfg.Browser.ControlURL, _ = flags.GetString("control-url")
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless, _ = flags.GetBool("headless")
	}
	if flags.Changed("profile") {
		cfg.Browser.Profile, _ = flags.GetString("profile")
	}
	if flags.Changed("chrome-bin") {
		cfg.Browser.Bin, _ = flags.GetString("chrome-bin")
	}
	if flags.Changed("debug") {
		debug, _ := flags.GetBool("debug")
		cfg.Debug = &debug
	}
	return cfg, cfg.Validate()
}

// app is what every command that touches the store needs.
type app struct {
	cfg      config.Config
	settings *settings.Settings
	log      *logging.Logger
}

// loadApp opens the settings store and builds the logger. Verbosity is
// fixed here: the --debug flag or config wins, then the stored toggle.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	kv, err := settings.OpenSQLite(cmd.Context(), cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	s := settings.New(kv)

	var debug bool
	if cfg.Debug != nil {
		debug = *cfg.Debug
	} else {
		toggles, err := s.Toggles(cmd.Context())
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		debug = toggles.DebugEnabled
	}
	return &app{cfg: cfg, settings: s, log: logging.New(os.Stderr, debug)}, nil
}

func (a *app) Close() {
	if err := a.settings.Close(); err != nil {
		a.log.Warn("failed to close settings store", "error", err)
	}
}

// connect reaches the configured browser.
func (a *app) connect(ctx context.Context) (*browser.Session, error) {
	s, err := browser.Connect(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	if s.LiveViewURL != "" {
		a.log.Info("kernel browser live view", "url", s.LiveViewURL)
	}
	return s, nil
}
