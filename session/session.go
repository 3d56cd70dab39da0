// Package session owns the shared browser process and hands out
// fingerprinted, isolated page contexts for individual fetches.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/models"
)

// Session manages one browser process shared across all fetches. The process
// is launched lazily on first use and relaunched only when absent or no
// longer responding. Session is safe for concurrent use; each caller gets its
// own isolated page context, so concurrent fetches share the process but not
// cookies or storage.
type Session struct {
	cfg config.BrowserConfig

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	activePages atomic.Int32
	launches    atomic.Int64
	installTried bool
}

// New creates a Session. No browser is launched until the first Browser or
// NewPage call.
func New(cfg config.BrowserConfig) *Session {
	return &Session{cfg: cfg}
}

// Browser returns a live browser handle, launching or relaunching as needed.
func (s *Session) Browser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		// Liveness check: a cheap CDP round-trip. A dead or disconnected
		// process fails here and triggers a relaunch.
		if _, err := (proto.BrowserGetVersion{}).Call(s.browser); err == nil {
			return s.browser, nil
		}
		slog.Warn("browser no longer responding, relaunching")
		s.teardownLocked()
	}

	if err := s.launchLocked(); err != nil {
		return nil, err
	}
	return s.browser, nil
}

// NewPage creates a fingerprinted page in a fresh incognito context. The
// ctx bounds page creation and fingerprinting only; the returned page is
// deliberately not bound to it, so cleanup still succeeds after the caller's
// deadline expires. The caller must release the page with ClosePage on every
// exit path.
func (s *Session) NewPage(ctx context.Context) (*rod.Page, error) {
	browser, err := s.Browser()
	if err != nil {
		return nil, err
	}

	inc, err := browser.Incognito()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to create isolated browser context",
			err,
		)
	}

	page, err := inc.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to open page",
			err,
		)
	}
	if err := configurePage(page.Context(ctx)); err != nil {
		_ = page.Close()
		return nil, err
	}

	s.activePages.Add(1)
	return page, nil
}

// ClosePage releases a page obtained from NewPage. Close failures are
// logged, never propagated: a failed close must not turn a successful fetch
// into a failed one.
func (s *Session) ClosePage(page *rod.Page) {
	if page == nil {
		return
	}
	if err := page.Close(); err != nil {
		slog.Warn("page close failed", "error", err)
	}
	s.activePages.Add(-1)
}

// Stats returns a snapshot of the session's current state.
func (s *Session) Stats() models.SessionStats {
	s.mu.Lock()
	live := false
	if s.browser != nil {
		_, err := proto.BrowserGetVersion{}.Call(s.browser)
		live = err == nil
	}
	s.mu.Unlock()

	return models.SessionStats{
		BrowserLive: live,
		ActivePages: int(s.activePages.Load()),
		Launches:    s.launches.Load(),
	}
}

// Close kills the browser process. Call on graceful shutdown to prevent
// zombie Chrome processes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	slog.Info("session closed")
}

// launchLocked starts a new browser process. Must be called with mu held.
func (s *Session) launchLocked() error {
	bin, err := s.ensureBinaryLocked()
	if err != nil {
		return err
	}

	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox).
		Bin(bin)

	// ── Stability / anti-automation flags ───────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	if s.cfg.Constrained {
		// Memory-pressure mitigation for constrained hosting.
		l.Set(flags.Flag("disable-gpu"))
		l.Set(flags.Flag("no-zygote"))
		l.Set(flags.Flag("renderer-process-limit"), "2")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}

	s.browser = browser
	s.launcher = l
	s.launches.Add(1)
	slog.Info("browser launched", "controlURL", controlURL, "constrained", s.cfg.Constrained)
	return nil
}

// ensureBinaryLocked resolves the browser binary, attempting a one-time
// bounded download when none is installed. Must be called with mu held.
func (s *Session) ensureBinaryLocked() (string, error) {
	if s.cfg.Bin != "" {
		return s.cfg.Bin, nil
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}

	if s.installTried {
		return "", models.NewScrapeError(
			models.ErrCodeEnvironmentSetup,
			"no browser binary available and a previous install attempt failed",
			nil,
		)
	}
	s.installTried = true

	slog.Info("no browser binary found, downloading", "timeout", s.cfg.InstallTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.InstallTimeout)
	defer cancel()

	b := launcher.NewBrowser()
	b.Context = ctx
	path, err := b.Get()
	if err != nil {
		return "", models.NewScrapeError(
			models.ErrCodeEnvironmentSetup,
			"browser install failed",
			err,
		)
	}
	slog.Info("browser installed", "path", path)
	return path, nil
}

// teardownLocked closes the browser and kills the launcher process.
// Must be called with mu held.
func (s *Session) teardownLocked() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser close failed", "error", err)
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
}
