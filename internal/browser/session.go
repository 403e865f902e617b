// Package browser connects autopaste to a Chrome instance over the DevTools
// protocol and exposes its pages through the dom contract.
package browser

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/kernel/autopaste/internal/config"
	"github.com/kernel/autopaste/internal/logging"
)

// Session is a connected browser plus whatever must be torn down with it.
type Session struct {
	Browser *rod.Browser
	// Mode is how the browser was reached.
	Mode config.BrowserMode
	// LiveViewURL is set for Kernel browsers.
	LiveViewURL string

	launcher *launcher.Launcher
	kernel   *KernelSession
	log      *logging.Logger
}

// Connect reaches the browser described by cfg.
func Connect(ctx context.Context, cfg config.Config, log *logging.Logger) (*Session, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Session{Mode: cfg.Browser.Mode, log: log}

	var controlURL string
	switch cfg.Browser.Mode {
	case config.ModeKernel:
		ks, err := NewKernelSession(ctx, NewKernelBrowserService(cfg.Kernel.APIKey, cfg.Kernel.BaseURL), KernelOptions{
			Timeout:  cfg.Kernel.Timeout,
			Stealth:  cfg.Kernel.Stealth,
			Headless: cfg.Browser.Headless,
		})
		if err != nil {
			return nil, fmt.Errorf("create kernel browser: %w", err)
		}
		s.kernel, s.LiveViewURL, controlURL = ks, ks.LiveViewURL, ks.CDPURL
		log.Info("kernel browser created", "id", ks.ID)
	case config.ModeRemote:
		controlURL = cfg.Browser.ControlURL
	case config.ModeAuto, config.ModeLocal:
		if cfg.Browser.Mode == config.ModeAuto && cfg.Browser.ControlURL != "" {
			controlURL = cfg.Browser.ControlURL
			s.Mode = config.ModeRemote
			break
		}
		l, err := newLauncher(cfg.Browser)
		if err != nil {
			return nil, err
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		s.launcher, controlURL, s.Mode = l, u, config.ModeLocal
	default:
		return nil, fmt.Errorf("unknown browser mode %q", cfg.Browser.Mode)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.Close(context.Background())
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	s.Browser = b
	log.Debug("connected to browser", "mode", s.Mode)
	return s, nil
}

func newLauncher(cfg config.Browser) (*launcher.Launcher, error) {
	// the browser outlives one-shot commands; Close kills it explicitly
	l := launcher.New().Headless(cfg.Headless).Leakless(false)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.UserDataDir != "" || cfg.Profile != "" {
		dir := cfg.UserDataDir
		if dir == "" {
			var err error
			if dir, err = ChromeUserDataDir(); err != nil {
				return nil, err
			}
		}
		profile, err := ResolveProfile(dir, cfg.Profile)
		if err != nil {
			return nil, err
		}
		l = l.UserDataDir(dir).ProfileDir(profile)
	}
	return l, nil
}

// Close disconnects and tears down anything this session created.
func (s *Session) Close(ctx context.Context) {
	// a remote browser belongs to someone else and is left running
	if s.Browser != nil && s.Mode != config.ModeRemote {
		_ = s.Browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
	}
	if s.kernel != nil {
		if err := s.kernel.Delete(ctx); err != nil {
			s.log.Warn("failed to delete kernel browser", "id", s.kernel.ID, "error", err)
		}
	}
}

// Detach leaves the browser and any tabs opened in it running after this
// process exits. Kernel browsers stay up until their timeout.
func (s *Session) Detach() {
	if s.kernel != nil {
		s.log.Info("kernel browser left running", "id", s.kernel.ID, "live_view", s.LiveViewURL)
	}
}

var chromeVersion = regexp.MustCompile(`(?:Chrome|Chromium|HeadlessChrome)/(\d+(?:\.\d+)*)`)

// Version returns the browser product string and its dotted version.
func (s *Session) Version(ctx context.Context) (product, version string, err error) {
	v, err := s.Browser.Context(ctx).Version()
	if err != nil {
		return "", "", err
	}
	m := chromeVersion.FindStringSubmatch(v.Product)
	if m == nil {
		return v.Product, "", fmt.Errorf("unrecognised browser product %q", v.Product)
	}
	return v.Product, m[1], nil
}
