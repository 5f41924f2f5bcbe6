package drupal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/testutil"
)

const (
	addMediaURL   = testBaseURL + "/media/add?field_media_of=5"
	addImageURL   = testBaseURL + "/media/add/image?field_media_of=5"
	savedMediaURL = testBaseURL + "/node/5/media?saved=1"
)

func addMediaPage() string {
	return htmlPage(`<ul class="admin-list">` +
		`<li><a href="/media/add/file?field_media_of=5">File (local files)</a></li>` +
		`<li><a href="/media/add/image?field_media_of=5">Image (local images)</a></li>` +
		`</ul>`)
}

func imageForm() string {
	return htmlPage(`<form><input type="checkbox" id="edit-field-media-use-17">` +
		`<select id="edit-field-access-terms"><option value="_none">- None -</option>` +
		`<option value="3">Public</option><option value="4">Private</option></select>` +
		`<input type="file" id="edit-field-media-image-0-upload"><input type="submit" id="edit-submit"></form>`)
}

func uploadPages() *testutil.FakePage {
	return objectPages(testutil.NewFakePage(), map[string]string{objectName: "/node/5"}).
		Serve(mediaTabURL(), mediaTable()).
		Serve(addMediaURL, addMediaPage()).
		Serve(addImageURL, imageForm()).
		Serve(savedMediaURL, htmlPage(statusBanner("Image <em>photo.jpg</em> has been created."))).
		ClickNavigates("#edit-submit", savedMediaURL)
}

func TestUploader_UploadImage(t *testing.T) {
	t.Parallel()

	page := uploadPages()
	err := NewUploader(page, testSite(t)).UploadMedia(context.Background(), objectName, MediaUpload{
		Kind: UploadImage, File: "./assets/photo.jpg", AccessTerm: "Private",
	})
	require.NoError(t, err)

	actions := page.Actions()
	tail := actions[len(actions)-5:]
	assert.Equal(t, []testutil.Action{
		{Kind: testutil.ActionNavigate, Value: addImageURL},
		{Kind: testutil.ActionClick, Selector: "#edit-field-media-use-17"},
		{Kind: testutil.ActionSetValue, Selector: "#edit-field-access-terms", Value: "4"},
		{Kind: testutil.ActionUpload, Selector: "#edit-field-media-image-0-upload", Files: []string{"./assets/photo.jpg"}},
		{Kind: testutil.ActionClick, Selector: "#edit-submit"},
	}, tail)
}

func TestUploader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		upload   MediaUpload
		sentinel error
	}{
		{"unknown kind", MediaUpload{Kind: "video", File: "a.mp4"}, e2eerrors.ErrInvalidArgument},
		{"missing file", MediaUpload{Kind: UploadFile}, e2eerrors.ErrEmptyValue},
		{"unknown access term", MediaUpload{Kind: UploadImage, File: "a.jpg", AccessTerm: "Embargoed"}, e2eerrors.ErrElementNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			page := uploadPages()
			err := NewUploader(page, testSite(t)).UploadMedia(context.Background(), objectName, tc.upload)
			require.ErrorIs(t, err, tc.sentinel)
			assert.Zero(t, page.Count(testutil.ActionUpload))
		})
	}
}

func TestUploader_SaveRejected(t *testing.T) {
	t.Parallel()

	page := uploadPages().
		Serve(savedMediaURL, htmlPage(errorBanner("The file photo.jpg could not be uploaded.")))
	err := NewUploader(page, testSite(t)).UploadMedia(context.Background(), objectName, MediaUpload{
		Kind: UploadImage, File: "photo.jpg", UseTermID: 21,
	})
	require.ErrorIs(t, err, e2eerrors.ErrExpectationFailed)
	assert.Contains(t, err.Error(), "could not be uploaded")
	assert.Contains(t, page.Actions(), testutil.Action{Kind: testutil.ActionClick, Selector: "#edit-field-media-use-21"})
}

func TestUploader_IgnoresSecurityAdvisory(t *testing.T) {
	t.Parallel()

	page := uploadPages().
		Serve(savedMediaURL, htmlPage(errorBanner(securityAdvisory)+statusBanner("Image <em>photo.jpg</em> has been created.")))
	err := NewUploader(page, testSite(t)).UploadMedia(context.Background(), objectName, MediaUpload{
		Kind: UploadImage, File: "photo.jpg",
	})
	require.NoError(t, err)

	t.Run("advisory beside a real error still fails", func(t *testing.T) {
		t.Parallel()
		page := uploadPages().
			Serve(savedMediaURL, htmlPage(errorBanner(securityAdvisory, "The file photo.jpg could not be uploaded.")))
		err := NewUploader(page, testSite(t)).UploadMedia(context.Background(), objectName, MediaUpload{
			Kind: UploadImage, File: "photo.jpg",
		})
		require.ErrorIs(t, err, e2eerrors.ErrExpectationFailed)
	})
}
