package drupal

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// Media listing table selectors.
const (
	selMediaRows    = ".views-table > tbody > tr"
	selMediaName    = ".views-field-name"
	selMediaBundle  = ".views-field-bundle"
	selMediaMime    = ".views-field-field-mime-type"
	selMediaUseCell = ".views-field-field-media-use"
	selAnchor       = "a"
)

// Derivative is one (media, use) pair of a repository object's media listing.
type Derivative struct {
	Name      string    `json:"name"`
	MediaType MediaType `json:"media_type"`
	MimeType  string    `json:"mime_type"`
	PageURL   string    `json:"page_url"`
	Use       MediaUse  `json:"use,omitempty"`
}

// HasUse reports whether the media declared a use.
func (d Derivative) HasUse() bool {
	return d.Use != ""
}

// Derivatives is a media listing projection.
type Derivatives []Derivative

// WithUse returns the derivatives tagged with use.
func (ds Derivatives) WithUse(use MediaUse) Derivatives {
	return ds.filter(func(d Derivative) bool { return d.Use == use })
}

// OfType returns the derivatives of media type t.
func (ds Derivatives) OfType(t MediaType) Derivatives {
	return ds.filter(func(d Derivative) bool { return d.MediaType == t })
}

// Named returns the derivatives of the media called name.
func (ds Derivatives) Named(name string) Derivatives {
	return ds.filter(func(d Derivative) bool { return d.Name == name })
}

// Uses returns the declared uses in listing order, skipping unset ones.
func (ds Derivatives) Uses() []MediaUse {
	uses := make([]MediaUse, 0, len(ds))
	for _, d := range ds {
		if d.HasUse() {
			uses = append(uses, d.Use)
		}
	}
	return uses
}

func (ds Derivatives) filter(keep func(Derivative) bool) Derivatives {
	out := Derivatives{}
	for _, d := range ds {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// ParseMediaTable projects a media listing snapshot into derivatives.
//
// Each table row with no use tags yields one derivative with Use unset; a row
// with u tags yields u derivatives that differ only in Use. PageURL is the
// href of the name link as rendered.
func ParseMediaTable(doc *goquery.Document) Derivatives {
	out := Derivatives{}
	doc.Find(selMediaRows).Each(func(_ int, row *goquery.Selection) {
		nameCell := row.ChildrenFiltered(selMediaName)
		base := Derivative{
			Name:      textOf(nameCell),
			MediaType: MediaType(textOf(row.ChildrenFiltered(selMediaBundle))),
			MimeType:  textOf(row.ChildrenFiltered(selMediaMime)),
		}
		if href, ok := nameCell.ChildrenFiltered(selAnchor).First().Attr("href"); ok {
			base.PageURL = href
		}

		uses := row.ChildrenFiltered(selMediaUseCell).ChildrenFiltered(selAnchor)
		if uses.Length() == 0 {
			out = append(out, base)
			return
		}
		uses.Each(func(_ int, tag *goquery.Selection) {
			d := base
			d.Use = MediaUse(textOf(tag))
			out = append(out, d)
		})
	})
	return out
}

// Inspector reads the media listings of repository objects.
// It never retries; compose it with a poller to wait for derivatives.
type Inspector struct {
	page browser.Page
	site Site
	settings
}

// NewInspector creates an Inspector driving page against site.
func NewInspector(page browser.Page, site Site, opts ...Option) *Inspector {
	return &Inspector{page: page, site: site, settings: newSettings("media", opts)}
}

// FindMediaOf returns the media listing of the object called name.
//
// The name must match exactly one link of the content listing, otherwise the
// error is a *errors.CardinalityError. PageURLs are resolved against the site.
func (i *Inspector) FindMediaOf(ctx context.Context, name string) (Derivatives, error) {
	if err := openMediaTab(ctx, i.page, i.site, name); err != nil {
		return nil, err
	}
	return i.readListing(ctx)
}

// WaitForMedia opens the media listing of name once and re-reads it, reloading
// the page between reads, until want accepts it or timeout elapses. A
// non-positive timeout uses the poller's deadline. On timeout the last listing
// read is returned with an error wrapping ErrPollTimeout.
func (i *Inspector) WaitForMedia(ctx context.Context, name string, want func(Derivatives) bool, timeout time.Duration) (Derivatives, error) {
	if err := openMediaTab(ctx, i.page, i.site, name); err != nil {
		return nil, err
	}

	var last Derivatives
	err := i.poller.WithTimeout(timeout).Until(ctx, "media of "+name, func(ctx context.Context) poll.Result {
		ds, err := i.readListing(ctx)
		if err != nil {
			return poll.Fatal(err)
		}
		last = ds
		if want(ds) {
			return poll.Done()
		}
		if err := i.page.Reload(ctx); err != nil {
			return poll.Fatal(e2eerrors.Wrap(err, "reload media listing"))
		}
		return poll.Retry()
	})
	if err != nil {
		return last, err
	}

	i.logger.Debug().Str("object", name).Int("derivatives", len(last)).Msg("media listing satisfied")
	return last, nil
}

// CountIs is a WaitForMedia condition satisfied by exactly n derivatives.
func CountIs(n int) func(Derivatives) bool {
	return func(ds Derivatives) bool { return len(ds) == n }
}

// HasUses is a WaitForMedia condition satisfied once every use is present.
func HasUses(uses ...MediaUse) func(Derivatives) bool {
	return func(ds Derivatives) bool {
		for _, u := range uses {
			if len(ds.WithUse(u)) == 0 {
				return false
			}
		}
		return true
	}
}

// readListing parses the current page and resolves PageURLs.
func (i *Inspector) readListing(ctx context.Context) (Derivatives, error) {
	doc, err := snapshot(ctx, i.page)
	if err != nil {
		return nil, err
	}
	ds := ParseMediaTable(doc)
	for n := range ds {
		if ds[n].PageURL == "" {
			continue
		}
		if abs, err := i.site.Resolve(ds[n].PageURL); err == nil {
			ds[n].PageURL = abs
		}
	}
	return ds, nil
}
