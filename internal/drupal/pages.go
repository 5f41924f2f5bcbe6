package drupal

import (
	"net/url"
	"strings"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// Paths of the admin screens the harness drives.
const (
	PathLogin       = "/user/login"
	PathMigrateForm = "/migrate_source_ui"
	PathContentList = "/admin/content"
	PathMediaList   = "/admin/content/media"
	PathFileList    = "/admin/content/files"
	PathCacheClear  = "/devel/cache/clear"
)

// Site resolves paths and links against the base URL of the site under test.
type Site struct {
	base *url.URL
}

// NewSite parses baseURL. It must be an absolute http(s) URL.
func NewSite(baseURL string) (Site, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return Site{}, e2eerrors.Wrapf(e2eerrors.ErrConfigInvalidSite, "parse base url %q: %v", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Site{}, e2eerrors.Wrapf(e2eerrors.ErrConfigInvalidSite, "base url %q must be an absolute http(s) URL", baseURL)
	}
	return Site{base: u}, nil
}

// BaseURL returns the site root without a trailing slash.
func (s Site) BaseURL() string {
	return s.base.String()
}

// URL returns the absolute URL of path on the site.
func (s Site) URL(path string) string {
	u := *s.base
	u.Path = strings.TrimRight(s.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Resolve turns a link found on a page into an absolute URL.
func (s Site) Resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "parse link %q: %v", href, err)
	}
	return s.base.ResolveReference(ref).String(), nil
}

// LoginURL is the user login form.
func (s Site) LoginURL() string { return s.URL(PathLogin) }

// MigrateFormURL is the CSV ingest form.
func (s Site) MigrateFormURL() string { return s.URL(PathMigrateForm) }

// ContentListURL is the admin content listing.
func (s Site) ContentListURL() string { return s.URL(PathContentList) }

// MediaListURL is the admin media listing.
func (s Site) MediaListURL() string { return s.URL(PathMediaList) }

// FileListURL is the admin file listing.
func (s Site) FileListURL() string { return s.URL(PathFileList) }

// CacheClearURL is the devel cache clear route.
func (s Site) CacheClearURL() string { return s.URL(PathCacheClear) }
