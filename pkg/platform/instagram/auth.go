package instagram

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/term"

	"viralreporter/pkg/browser"
	apperrors "viralreporter/pkg/errors"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/platform"
)

const (
	homeURL  = "https://www.instagram.com/"
	loginURL = "https://www.instagram.com/accounts/login/"

	loginPathMarker = "/accounts/login"
)

// Authenticate establishes a logged-in session. It runs at most once per
// service: a stored session is validated first, and only when that fails is
// the user asked to log in through a visible browser window. The outcome,
// success or failure, is cached for the rest of the run.
func (s *Service) Authenticate(ctx context.Context) error {
	s.authOnce.Do(func() {
		auth := s.doAuth
		if auth == nil {
			auth = s.authenticate
		}
		s.authErr = auth(ctx)
	})
	return s.authErr
}

func (s *Service) authenticate(ctx context.Context) error {
	bctx, err := s.deps.Browser.NewContext()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to create browser context", err)
	}
	s.browserCtx = bctx

	blob, err := s.deps.Sessions.Load(string(platform.Instagram))
	if err == nil {
		if err := browser.ImportCookies(bctx, blob); err != nil {
			s.log.WithError(err).Warn("Stored session could not be restored")
		} else if err := s.probeSession(ctx); err == nil {
			logger.LogAuth(string(platform.Instagram), "restored saved session")
			return nil
		} else {
			s.log.WithError(err).Info("Saved session rejected, interactive login required")
		}
	}

	return s.interactiveLogin(ctx)
}

// probeSession opens the home page with the imported cookies and checks we
// were not bounced to the login form
func (s *Service) probeSession(ctx context.Context) error {
	page, err := s.deps.Browser.NewPage(s.browserCtx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram), "failed to open probe page", err)
	}
	defer page.Close()

	if err := s.deps.Browser.Navigate(ctx, page, homeURL); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram), "session probe navigation failed", err)
	}

	if info, err := page.Info(); err == nil && strings.Contains(info.URL, loginPathMarker) {
		return apperrors.New(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram), "saved session redirected to login")
	}

	probe := s.deps.Config.Browser.SessionProbe
	if _, err := page.Timeout(probe).ElementR("a, span, svg", "/profile|home|reels/i"); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram), "logged-in navigation not found", err)
	}
	return nil
}

// interactiveLogin opens a visible browser window and waits for the user to
// complete the login form, then persists the session for future runs
func (s *Service) interactiveLogin(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return apperrors.New(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram),
			"no valid session and no terminal for interactive login (run `viralreporter auth login` from a terminal first)")
	}

	logger.LogAuth(string(platform.Instagram), "waiting for interactive login")

	headful := browser.NewManager(browser.Config{
		Headless:        false,
		ViewportWidth:   s.deps.Config.Browser.ViewportWidth,
		ViewportHeight:  s.deps.Config.Browser.ViewportHeight,
		PageLoadTimeout: s.deps.Config.Browser.PageLoadTimeout,
		Logger:          s.log,
	})
	if err := headful.Start(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to open login window", err)
	}
	defer headful.Close()

	// Stale cookies sometimes let the user skip part of the form
	if blob, err := s.deps.Sessions.Load(string(platform.Instagram)); err == nil {
		if err := browser.ImportCookies(headful.Browser(), blob); err != nil {
			s.log.WithError(err).Debug("Could not pre-seed stale cookies")
		}
	}

	page, err := headful.NewPage(headful.Browser())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to open login page", err)
	}

	if err := headful.Navigate(ctx, page, loginURL); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNavigation, string(platform.Instagram), "failed to load login form", err)
	}

	if err := s.waitForLogin(ctx, page); err != nil {
		return err
	}

	dismissPopups(page)

	blob, err := browser.ExportCookies(headful.Browser())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeUnknown, string(platform.Instagram), "failed to export session", err)
	}
	if err := s.deps.Sessions.Save(string(platform.Instagram), blob); err != nil {
		s.log.WithError(err).Warn("Failed to persist session, login will be required next run")
	}

	if err := browser.ImportCookies(s.browserCtx, blob); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeSessionInvalid, string(platform.Instagram), "failed to adopt fresh session", err)
	}

	logger.LogAuth(string(platform.Instagram), "login complete, session saved")
	return nil
}

// waitForLogin polls the page URL until it leaves the login form or the
// login window times out
func (s *Service) waitForLogin(ctx context.Context, page *rod.Page) error {
	deadline := time.Now().Add(s.deps.Config.Browser.LoginTimeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return apperrors.Wrap(apperrors.ErrorTypeAuthTimeout, string(platform.Instagram), "login cancelled", ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				return apperrors.New(apperrors.ErrorTypeAuthTimeout, string(platform.Instagram), "login window timed out")
			}
			info, err := page.Info()
			if err != nil {
				continue
			}
			if strings.Contains(info.URL, loginPathMarker) {
				continue
			}
			// Left the form; confirm the logged-in UI actually rendered
			if _, err := page.Timeout(5 * time.Second).ElementR("a, span, svg", "/profile|home|reels/i"); err == nil {
				return nil
			}
		}
	}
}

// dismissPopups clears the "save your login info" and notification prompts
// that follow a fresh login. Best effort; an undismissed popup only clutters
// the screenshot.
func dismissPopups(page *rod.Page) {
	for i := 0; i < 2; i++ {
		btn, err := page.Timeout(3 * time.Second).ElementR("button, div[role=button]", "/not now/i")
		if err != nil {
			return
		}
		if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return
		}
	}
}
