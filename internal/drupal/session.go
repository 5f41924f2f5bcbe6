// Package drupal drives the admin UI of an Islandora site: logging in,
// running CSV ingest migrations and reading the media listing of repository
// objects.
//
// Every inspection works on a fresh snapshot of the rendered page; nothing is
// cached between calls because the site changes underneath the harness while
// background jobs run.
package drupal

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// Login form controls.
const (
	selLoginName   = "#edit-name"
	selLoginPass   = "#edit-pass"
	selLoginSubmit = "#edit-submit"
	selLoginForm   = "form#user-login-form"

	cacheClearedText = "Cache cleared"
)

// Session performs account and site maintenance actions.
type Session struct {
	page browser.Page
	site Site
	settings
}

// NewSession creates a Session driving page against site.
func NewSession(page browser.Page, site Site, opts ...Option) *Session {
	return &Session{page: page, site: site, settings: newSettings("session", opts)}
}

// Login signs in through the login form and waits until the form is gone.
// An error banner the benign policy does not accept, or a form that never
// goes away, is ErrLoginFailed.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return e2eerrors.Wrap(e2eerrors.ErrEmptyValue, "username")
	}

	if err := s.page.Navigate(ctx, s.site.LoginURL()); err != nil {
		return e2eerrors.Wrap(err, "open login form")
	}
	if err := s.page.SendKeys(ctx, selLoginName, username); err != nil {
		return e2eerrors.Wrap(err, "enter username")
	}
	if err := s.page.SendKeys(ctx, selLoginPass, password); err != nil {
		return e2eerrors.Wrap(err, "enter password")
	}
	if err := s.page.Click(ctx, selLoginSubmit); err != nil {
		return e2eerrors.Wrap(err, "submit login form")
	}

	err := s.poller.Until(ctx, "login", func(ctx context.Context) poll.Result {
		doc, err := snapshot(ctx, s.page)
		if err != nil {
			return poll.Fatal(err)
		}
		if msgs := blockingMessages(doc, s.policy); len(msgs) > 0 {
			return poll.Fatal(e2eerrors.Wrapf(e2eerrors.ErrLoginFailed, "%s: %v", username, msgs))
		}
		if doc.Find(selLoginForm).Length() > 0 {
			return poll.Retry()
		}
		return poll.Done()
	})
	if errors.Is(err, e2eerrors.ErrPollTimeout) {
		return fmt.Errorf("%w: %s: login form still shown: %w", e2eerrors.ErrLoginFailed, username, err)
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("user", username).Msg("logged in")
	return nil
}

// ClearCache rebuilds Drupal caches through the devel route and waits for
// its confirmation.
func (s *Session) ClearCache(ctx context.Context) error {
	if err := s.page.Navigate(ctx, s.site.CacheClearURL()); err != nil {
		return e2eerrors.Wrap(err, "open cache clear")
	}

	err := s.poller.Until(ctx, "cache clear", func(ctx context.Context) poll.Result {
		doc, err := snapshot(ctx, s.page)
		if err != nil {
			return poll.Fatal(err)
		}
		if cacheCleared(doc) {
			return poll.Done()
		}
		return poll.Retry()
	})
	if errors.Is(err, e2eerrors.ErrPollTimeout) {
		return fmt.Errorf("%w: %w", e2eerrors.ErrCacheClearFailed, err)
	}
	if err != nil {
		return err
	}

	s.logger.Debug().Msg("cache cleared")
	return nil
}

func cacheCleared(doc *goquery.Document) bool {
	return withText(doc.Find(selMessages), cacheClearedText).Length() > 0
}

// Logger returns the session logger.
func (s *Session) Logger() zerolog.Logger {
	return s.logger
}
