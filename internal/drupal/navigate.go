package drupal

import (
	"context"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// Selectors of the admin listings and local task tabs.
const (
	selContentLinks = "div.view-content a"
	selLocalTasks   = "#block-idcui-local-tasks a"
	mediaTabText    = "Media"
)

// follow navigates to the href of an anchor.
func follow(ctx context.Context, page browser.Page, site Site, href string) error {
	target, err := site.Resolve(href)
	if err != nil {
		return err
	}
	return page.Navigate(ctx, target)
}

// followFirst follows the first anchor matching selector whose text contains text.
func followFirst(ctx context.Context, page browser.Page, site Site, selector, text string) error {
	doc, err := snapshot(ctx, page)
	if err != nil {
		return err
	}
	link := withText(doc.Find(selector), text).First()
	if link.Length() == 0 {
		return e2eerrors.Wrapf(e2eerrors.ErrElementNotFound, "no %q link with text %q", selector, text)
	}
	href, err := linkHref(link, selector)
	if err != nil {
		return err
	}
	return follow(ctx, page, site, href)
}

// openObject opens the repository object named name from the content listing.
// The name must match exactly one listed link.
func openObject(ctx context.Context, page browser.Page, site Site, name string) error {
	if err := page.Navigate(ctx, site.ContentListURL()); err != nil {
		return e2eerrors.Wrap(err, "open content listing")
	}
	doc, err := snapshot(ctx, page)
	if err != nil {
		return err
	}
	link, err := exactlyOne(doc, selContentLinks, name)
	if err != nil {
		return err
	}
	href, err := linkHref(link, "content link "+name)
	if err != nil {
		return err
	}
	return follow(ctx, page, site, href)
}

// openMediaTab opens the media sub-listing of the object named name.
func openMediaTab(ctx context.Context, page browser.Page, site Site, name string) error {
	if err := openObject(ctx, page, site, name); err != nil {
		return err
	}
	return e2eerrors.Wrapf(followFirst(ctx, page, site, selLocalTasks, mediaTabText), "open media of %q", name)
}
