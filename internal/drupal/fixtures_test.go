package drupal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://idc.test"

func testSite(t *testing.T) Site {
	t.Helper()
	site, err := NewSite(testBaseURL)
	require.NoError(t, err)
	return site
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := ParseDocument(html)
	require.NoError(t, err)
	return doc
}

func htmlPage(body string) string {
	return "<html><head><title>IDC</title></head><body>" + body + "</body></html>"
}

// statusBanner renders a single status message the way Drupal does.
func statusBanner(msg string) string {
	return `<div class="messages messages--status" role="status">` +
		`<h2 class="visually-hidden">Status message</h2>` + msg + `</div>`
}

// errorBanner renders error messages; several become list items.
func errorBanner(msgs ...string) string {
	if len(msgs) == 1 {
		return `<div class="messages messages--error" role="alert">` +
			`<h2 class="visually-hidden">Error message</h2>` + msgs[0] + `</div>`
	}
	var b strings.Builder
	b.WriteString(`<div class="messages messages--error" role="alert"><h2 class="visually-hidden">Error message</h2><ul class="messages__list">`)
	for _, m := range msgs {
		b.WriteString(`<li class="messages__item">` + m + `</li>`)
	}
	b.WriteString(`</ul></div>`)
	return b.String()
}

func doneMessage(id string, created, failed int) string {
	return fmt.Sprintf("Processed %d items (%d created, 0 updated, %d failed, 0 ignored) - done with &quot;%s&quot;",
		created+failed, created, failed, id)
}

// migratePage renders the ingest form with banners above it.
func migratePage(banners ...string) string {
	var opts strings.Builder
	for _, k := range MigrationKinds() {
		fmt.Fprintf(&opts, `<option value="%s">%s</option>`, k, k)
	}
	return htmlPage(strings.Join(banners, "") +
		`<form id="migrate-source-ui-form"><select id="edit-migrations" name="migrations">` + opts.String() +
		`</select><input type="file" id="edit-source-file"><input type="submit" id="edit-import" value="Import"></form>`)
}

const securityAdvisory = `There is a security update available for your version of Drupal. See the <a href="/admin/reports/updates">available updates</a> page for more information.`

const moduleAdvisory = `There are security updates available for one or more of your modules or themes.`

// contentListing renders the admin content view with one link per title.
func contentListing(titles map[string]string) string {
	var b strings.Builder
	b.WriteString(`<div class="view-content"><table class="views-table"><tbody>`)
	for title, href := range titles {
		fmt.Fprintf(&b, `<tr><td class="views-field-title"><a href="%s">%s</a></td></tr>`, href, title)
	}
	b.WriteString(`</tbody></table></div>`)
	return htmlPage(b.String())
}

// objectPage renders a node page with its local task tabs.
func objectPage(nid int) string {
	return htmlPage(fmt.Sprintf(`<nav id="block-idcui-local-tasks"><ul>`+
		`<li><a href="/node/%[1]d">View</a></li>`+
		`<li><a href="/node/%[1]d/edit">Edit</a></li>`+
		`<li><a href="/node/%[1]d/media">Media</a></li>`+
		`</ul></nav>`, nid))
}

type mediaRow struct {
	mid    int
	name   string
	bundle string
	mime   string
	uses   []string
}

// mediaTable renders the media tab of a node.
func mediaTable(rows ...mediaRow) string {
	var b strings.Builder
	b.WriteString(`<a href="/media/add?field_media_of=5" class="button button--action">Add media</a>`)
	b.WriteString(`<table class="views-table"><thead><tr><th>Name</th></tr></thead><tbody>`)
	for _, r := range rows {
		var uses strings.Builder
		for _, u := range r.uses {
			fmt.Fprintf(&uses, `<a href="/taxonomy/term/%d">%s</a>`, len(u), u)
		}
		fmt.Fprintf(&b, `<tr>`+
			`<td class="views-field views-field-name"><a href="/media/%d">%s</a> </td>`+
			`<td class="views-field views-field-bundle">  %s </td>`+
			`<td class="views-field views-field-field-mime-type">%s</td>`+
			`<td class="views-field views-field-field-media-use">%s</td>`+
			`</tr>`, r.mid, r.name, r.bundle, r.mime, uses.String())
	}
	b.WriteString(`</tbody></table>`)
	return htmlPage(b.String())
}

// threeDerivativeRows is an image tagged twice plus its generated thumbnail.
func threeDerivativeRows() []mediaRow {
	return []mediaRow{
		{mid: 12, name: "Derivative Image 01.jpg", bundle: "Image", mime: "image/jpeg",
			uses: []string{"Original File", "Preservation Master File"}},
		{mid: 13, name: "Derivative Image 01 - Thumbnail Image.jpg", bundle: "Image", mime: "image/jpeg",
			uses: []string{"Thumbnail Image"}},
	}
}
