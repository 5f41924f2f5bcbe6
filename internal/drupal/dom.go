package drupal

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/jhu-idc/idce2e/internal/browser"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// ParseDocument parses an HTML snapshot.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, e2eerrors.Wrap(err, "parse page snapshot")
	}
	return doc, nil
}

// snapshot takes a fresh DOM snapshot of page.
func snapshot(ctx context.Context, page browser.Page) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return ParseDocument(html)
}

// normalizeText NFC-normalizes s and collapses whitespace runs, which is how
// the rendered text of an element reads to a user.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// textOf returns the normalized text of sel.
func textOf(sel *goquery.Selection) string {
	return normalizeText(sel.Text())
}

// withText keeps the elements of sel whose text contains every one of texts.
func withText(sel *goquery.Selection, texts ...string) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		content := textOf(s)
		for _, t := range texts {
			if !strings.Contains(content, normalizeText(t)) {
				return false
			}
		}
		return true
	})
}

// exactlyOne narrows the elements matching selector in doc to those containing
// text and requires a single match.
func exactlyOne(doc *goquery.Document, selector, text string) (*goquery.Selection, error) {
	matches := withText(doc.Find(selector), text)
	if matches.Length() != 1 {
		return nil, &e2eerrors.CardinalityError{Selector: selector, Text: text, Count: matches.Length()}
	}
	return matches, nil
}

// linkHref returns the href of a single anchor, or ErrElementNotFound.
func linkHref(link *goquery.Selection, what string) (string, error) {
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", e2eerrors.Wrapf(e2eerrors.ErrElementNotFound, "%s has no href", what)
	}
	return strings.TrimSpace(href), nil
}
