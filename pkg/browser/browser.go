// Package browser owns the Chrome lifecycle for the reporter. It wraps go-rod
// with stealth page creation so automated sessions look like regular ones.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"viralreporter/pkg/logger"
)

// Config controls how the browser is launched
type Config struct {
	// Headless runs Chrome without a visible window
	Headless bool

	// RemoteURL connects to an already-running Chrome via its devtools
	// websocket instead of launching one
	RemoteURL string

	// ViewportWidth and ViewportHeight set the page viewport
	ViewportWidth  int
	ViewportHeight int

	// PageLoadTimeout bounds navigation and load waits
	PageLoadTimeout time.Duration

	Logger logger.Logger
}

// Manager owns a Chrome instance and hands out pages
type Manager struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
	log      logger.Logger
}

// NewManager creates a browser manager. Call Start before using it.
func NewManager(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{cfg: cfg, log: log}
}

// Start launches Chrome (or connects to a remote one) and verifies the
// devtools connection
func (m *Manager) Start(ctx context.Context) error {
	wsURL := m.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		m.launcher = l
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		return fmt.Errorf("failed to configure browser: %w", err)
	}

	m.browser = b
	m.log.DebugWithFields("Browser started", map[string]interface{}{
		"headless": m.cfg.Headless,
		"remote":   m.cfg.RemoteURL != "",
	})
	return nil
}

// Browser returns the underlying rod browser
func (m *Manager) Browser() *rod.Browser {
	return m.browser
}

// NewContext returns an isolated incognito browser context. Cookies imported
// into one context are not visible to another.
func (m *Manager) NewContext() (*rod.Browser, error) {
	if m.browser == nil {
		return nil, fmt.Errorf("browser not started")
	}
	inc, err := m.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}
	return inc, nil
}

// NewPage opens a stealth page in the given context with the configured
// viewport applied
func (m *Manager) NewPage(b *rod.Browser) (*rod.Page, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if err := SetViewport(page, m.cfg.ViewportWidth, m.cfg.ViewportHeight); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

// Navigate loads a URL on the page and waits for the load event, bounded by
// the configured page load timeout
func (m *Manager) Navigate(ctx context.Context, page *rod.Page, url string) error {
	if m.cfg.PageLoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.PageLoadTimeout)
		defer cancel()
	}

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// Close shuts down the browser and its launcher
func (m *Manager) Close() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Cleanup()
		m.launcher = nil
	}
	return err
}

// SetViewport applies viewport dimensions to a page
func SetViewport(page *rod.Page, width, height int) error {
	err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	return nil
}
