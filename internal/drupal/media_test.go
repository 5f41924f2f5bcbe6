package drupal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhu-idc/idce2e/internal/clock"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
	"github.com/jhu-idc/idce2e/internal/testutil"
)

const objectName = "Derivative Image 01"

func mediaTabURL() string { return testBaseURL + "/node/5/media" }

// objectPages scripts the content listing and node page leading to node 5.
func objectPages(page *testutil.FakePage, titles map[string]string) *testutil.FakePage {
	return page.
		Serve(testBaseURL+PathContentList, contentListing(titles)).
		Serve(testBaseURL+"/node/5", objectPage(5))
}

func TestParseMediaTable(t *testing.T) {
	t.Parallel()

	rows := append(threeDerivativeRows(), mediaRow{
		mid: 14, name: "Derivative Image 01 - FITS.xml", bundle: "FITS Technical metadata", mime: "application/xml",
	})
	got := ParseMediaTable(parse(t, mediaTable(rows...)))

	require.Len(t, got, 4)
	assert.Equal(t, Derivative{
		Name: "Derivative Image 01.jpg", MediaType: MediaTypeImage, MimeType: "image/jpeg",
		PageURL: "/media/12", Use: UseOriginalFile,
	}, got[0])
	assert.Equal(t, UsePreservationMaster, got[1].Use)
	assert.Equal(t, UseThumbnailImage, got[2].Use)

	untagged := got[3]
	assert.False(t, untagged.HasUse())
	assert.Equal(t, MediaTypeFITS, untagged.MediaType)
	assert.Equal(t, "/media/14", untagged.PageURL)
}

func TestParseMediaTable_FanOut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uses []string
		want int
	}{
		{"no tags", nil, 1},
		{"one tag", []string{"Service File"}, 1},
		{"two tags", []string{"Original File", "Preservation Master File"}, 2},
		{"three tags", []string{"Original File", "Service File", "Intermediate File"}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ParseMediaTable(parse(t, mediaTable(mediaRow{
				mid: 7, name: "scan.tiff", bundle: "File", mime: "image/tiff", uses: tc.uses,
			})))
			require.Len(t, got, tc.want)

			seen := map[MediaUse]bool{}
			for _, d := range got {
				assert.Equal(t, "scan.tiff", d.Name)
				assert.Equal(t, MediaTypeFile, d.MediaType)
				assert.Equal(t, "image/tiff", d.MimeType)
				assert.Equal(t, "/media/7", d.PageURL)
				assert.False(t, seen[d.Use], "uses must be distinct")
				seen[d.Use] = true
			}
			if len(tc.uses) == 0 {
				assert.False(t, got[0].HasUse())
			}
		})
	}
}

func TestParseMediaTable_Empty(t *testing.T) {
	t.Parallel()

	got := ParseMediaTable(parse(t, mediaTable()))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDerivativesHelpers(t *testing.T) {
	t.Parallel()

	ds := ParseMediaTable(parse(t, mediaTable(append(threeDerivativeRows(),
		mediaRow{mid: 20, name: "transcript.txt", bundle: "Extracted Text", mime: "text/plain", uses: []string{"Extracted Text"}},
	)...)))

	assert.Len(t, ds.OfType(MediaTypeImage), 3)
	assert.Len(t, ds.WithUse(UseThumbnailImage), 1)
	assert.Empty(t, ds.WithUse(UseTranscript))
	assert.Len(t, ds.Named("Derivative Image 01.jpg"), 2)
	assert.Equal(t, []MediaUse{UseOriginalFile, UsePreservationMaster, UseThumbnailImage, UseExtractedText}, ds.Uses())

	assert.True(t, CountIs(4)(ds))
	assert.False(t, CountIs(3)(ds))
	assert.True(t, HasUses(UseOriginalFile, UseThumbnailImage)(ds))
	assert.False(t, HasUses(UseServiceFile)(ds))
}

func TestInspector_FindMediaOf(t *testing.T) {
	t.Parallel()

	page := objectPages(testutil.NewFakePage(), map[string]string{
		objectName:         "/node/5",
		"Another Object 1": "/node/9",
	}).Serve(mediaTabURL(), mediaTable(threeDerivativeRows()...))
	inspector := NewInspector(page, testSite(t))

	got, err := inspector.FindMediaOf(context.Background(), objectName)
	require.NoError(t, err)
	require.Len(t, got, 3, "two uses of the image plus one thumbnail")
	assert.Equal(t, testBaseURL+"/media/12", got[0].PageURL)
	assert.Equal(t, testBaseURL+"/media/12", got[1].PageURL)
	assert.Equal(t, testBaseURL+"/media/13", got[2].PageURL)

	loc, err := page.Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mediaTabURL(), loc)
	assert.Zero(t, page.Count(testutil.ActionReload), "inspection never retries")
}

func TestInspector_FindMediaOfIsIdempotent(t *testing.T) {
	t.Parallel()

	page := objectPages(testutil.NewFakePage(), map[string]string{objectName: "/node/5"}).
		Serve(mediaTabURL(), mediaTable(threeDerivativeRows()...))
	inspector := NewInspector(page, testSite(t))

	first, err := inspector.FindMediaOf(context.Background(), objectName)
	require.NoError(t, err)
	second, err := inspector.FindMediaOf(context.Background(), objectName)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

func TestInspector_Cardinality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		titles map[string]string
		count  int
	}{
		{"no match", map[string]string{"Something Else": "/node/3"}, 0},
		{"two matches", map[string]string{objectName: "/node/5", objectName + " (copy)": "/node/6"}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page := objectPages(testutil.NewFakePage(), tc.titles)
			_, err := NewInspector(page, testSite(t)).FindMediaOf(context.Background(), objectName)
			require.ErrorIs(t, err, e2eerrors.ErrCardinality)

			var cardErr *e2eerrors.CardinalityError
			require.ErrorAs(t, err, &cardErr)
			assert.Equal(t, tc.count, cardErr.Count)
			assert.Equal(t, objectName, cardErr.Text)
			assert.Equal(t, 1, page.Count(testutil.ActionNavigate), "stays on the content listing")
		})
	}
}

func TestInspector_MissingMediaTab(t *testing.T) {
	t.Parallel()

	page := testutil.NewFakePage().
		Serve(testBaseURL+PathContentList, contentListing(map[string]string{objectName: "/node/5"})).
		Serve(testBaseURL+"/node/5", htmlPage(`<nav id="block-idcui-local-tasks"><a href="/node/5">View</a></nav>`))

	_, err := NewInspector(page, testSite(t)).FindMediaOf(context.Background(), objectName)
	require.ErrorIs(t, err, e2eerrors.ErrElementNotFound)
}

func TestInspector_WaitForMedia(t *testing.T) {
	t.Parallel()

	page := objectPages(testutil.NewFakePage(), map[string]string{objectName: "/node/5"}).
		Serve(mediaTabURL(),
			mediaTable(threeDerivativeRows()[0]),
			mediaTable(threeDerivativeRows()[0]),
			mediaTable(threeDerivativeRows()...),
		)
	inspector := NewInspector(page, testSite(t), WithPoller(poll.New(time.Minute)))

	got, err := inspector.WaitForMedia(context.Background(), objectName, CountIs(3), 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 2, page.Count(testutil.ActionReload), "reload after each short listing")
	assert.Equal(t, 3, page.Reads(mediaTabURL()))
}

func TestInspector_WaitForMediaTimeout(t *testing.T) {
	t.Parallel()

	m := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	page := objectPages(testutil.NewFakePage(), map[string]string{objectName: "/node/5"}).
		Serve(mediaTabURL(), mediaTable(threeDerivativeRows()[0])).
		OnHTML(func(url string, _ int) {
			if url == mediaTabURL() {
				m.Advance(400 * time.Millisecond)
			}
		})
	inspector := NewInspector(page, testSite(t), WithPoller(poll.New(time.Hour, poll.WithClock(m))))

	got, err := inspector.WaitForMedia(context.Background(), objectName, HasUses(UseThumbnailImage), time.Second)
	require.ErrorIs(t, err, e2eerrors.ErrPollTimeout)
	assert.Contains(t, err.Error(), "media of "+objectName)
	assert.Len(t, got, 2, "last listing is returned for diagnosis")
	assert.Equal(t, 3, page.Reads(mediaTabURL()))
	assert.Equal(t, 3, page.Count(testutil.ActionReload))
}

func TestInspector_WaitForMediaFatal(t *testing.T) {
	t.Parallel()

	page := objectPages(testutil.NewFakePage(), map[string]string{objectName: "/node/5"}).
		Serve(mediaTabURL(), mediaTable()).
		FailOn(testutil.ActionReload, testutil.ErrMockBrowser)

	_, err := NewInspector(page, testSite(t)).WaitForMedia(context.Background(), objectName, CountIs(1), 0)
	require.ErrorIs(t, err, testutil.ErrMockBrowser)
	assert.NotErrorIs(t, err, e2eerrors.ErrPollTimeout)
}
