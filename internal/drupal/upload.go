package drupal

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// UploadKind selects the media bundle created by an upload.
type UploadKind string

// Upload kinds offered by the "Add media" page.
const (
	UploadImage UploadKind = "image"
	UploadFile  UploadKind = "file"
)

// DefaultUseTermID is the term id of "Original File" in the media use
// vocabulary of a freshly provisioned site.
const DefaultUseTermID = 17

// Media add form controls.
const (
	selAddMediaButton = "a.button"
	selAddMediaList   = ".admin-list a"
	selAccessTerms    = "#edit-field-access-terms"
	selMediaSubmit    = "#edit-submit"
)

// MediaUpload describes a media file attached to a repository object.
type MediaUpload struct {
	Kind UploadKind
	// File is the local path of the file to upload.
	File string
	// AccessTerm is the label of the access term option to select, if any.
	AccessTerm string
	// UseTermID is the media use term to tick. Zero means DefaultUseTermID.
	UseTermID int
}

// linkText is the "Add media" entry for the kind.
func (k UploadKind) linkText() (string, error) {
	switch k {
	case UploadImage:
		return "local images", nil
	case UploadFile:
		return "local files", nil
	default:
		return "", e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "upload kind %q", string(k))
	}
}

// fileInput is the upload control of the kind's add form.
func (k UploadKind) fileInput() string {
	return fmt.Sprintf("#edit-field-media-%s-0-upload", k)
}

// Uploader adds media to repository objects through the admin UI.
type Uploader struct {
	page browser.Page
	site Site
	settings
}

// NewUploader creates an Uploader driving page against site.
func NewUploader(page browser.Page, site Site, opts ...Option) *Uploader {
	return &Uploader{page: page, site: site, settings: newSettings("upload", opts)}
}

// UploadMedia attaches up.File to the object called name and waits for the
// save confirmation.
func (u *Uploader) UploadMedia(ctx context.Context, name string, up MediaUpload) error {
	linkText, err := up.Kind.linkText()
	if err != nil {
		return err
	}
	if up.File == "" {
		return e2eerrors.Wrap(e2eerrors.ErrEmptyValue, "upload file")
	}
	useID := up.UseTermID
	if useID == 0 {
		useID = DefaultUseTermID
	}

	if err := openMediaTab(ctx, u.page, u.site, name); err != nil {
		return err
	}
	if err := followFirst(ctx, u.page, u.site, selAddMediaButton, ""); err != nil {
		return e2eerrors.Wrap(err, "open add media")
	}
	if err := followFirst(ctx, u.page, u.site, selAddMediaList, linkText); err != nil {
		return e2eerrors.Wrapf(err, "choose %s", linkText)
	}

	if err := u.page.Click(ctx, fmt.Sprintf("#edit-field-media-use-%d", useID)); err != nil {
		return e2eerrors.Wrap(err, "tick media use")
	}
	if up.AccessTerm != "" {
		if err := u.selectAccessTerm(ctx, up.AccessTerm); err != nil {
			return err
		}
	}
	if err := u.page.SetUploadFiles(ctx, up.Kind.fileInput(), []string{up.File}); err != nil {
		return e2eerrors.Wrap(err, "attach media file")
	}
	if err := u.page.Click(ctx, selMediaSubmit); err != nil {
		return e2eerrors.Wrap(err, "save media")
	}

	err = u.poller.Until(ctx, "media saved", func(ctx context.Context) poll.Result {
		doc, err := snapshot(ctx, u.page)
		if err != nil {
			return poll.Fatal(err)
		}
		if msgs := blockingMessages(doc, u.policy); len(msgs) > 0 {
			return poll.Fatal(e2eerrors.Wrapf(e2eerrors.ErrExpectationFailed,
				"media for %q not saved: %s", name, strings.Join(msgs, "; ")))
		}
		if doc.Find(selStatusBanner).Length() > 0 {
			return poll.Done()
		}
		return poll.Retry()
	})
	if err != nil {
		return err
	}

	u.logger.Info().Str("object", name).Str("file", up.File).Str("kind", string(up.Kind)).Msg("media uploaded")
	return nil
}

// selectAccessTerm picks the access term option whose label contains term.
func (u *Uploader) selectAccessTerm(ctx context.Context, term string) error {
	doc, err := snapshot(ctx, u.page)
	if err != nil {
		return err
	}
	option := withText(doc.Find(selAccessTerms+" option"), term).First()
	value, ok := option.Attr("value")
	if option.Length() == 0 || !ok {
		return e2eerrors.Wrapf(e2eerrors.ErrElementNotFound, "access term %q", term)
	}
	return e2eerrors.Wrap(u.page.SetValue(ctx, selAccessTerms, value), "select access term")
}
