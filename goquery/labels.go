package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/imdbscrape"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// labelMatcher finds the elements that carry a field's caption.
// Captions are compared after NFC normalisation and Unicode case folding,
// so "GÉNEROS", "géneros" and a decomposed "Género" all match "Género".
type labelMatcher struct {
	synonyms map[imdbscrape.Field][]string
}

func newLabelMatcher(labels imdbscrape.Labels) *labelMatcher {
	m := &labelMatcher{synonyms: make(map[imdbscrape.Field][]string, len(labels))}
	for _, field := range imdbscrape.AllFields() {
		for _, caption := range labels.Synonyms(field) {
			if folded := fold(caption); folded != "" {
				m.synonyms[field] = append(m.synonyms[field], folded)
			}
		}
	}
	return m
}

// find returns the tag elements of doc whose text contains a caption of
// field, in document order. Ancestors of a caption match as well.
func (m *labelMatcher) find(doc *goquery.Document, tag string, field imdbscrape.Field) *goquery.Selection {
	synonyms := m.synonyms[field]
	return doc.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		if len(synonyms) == 0 || !hasText(s.Nodes[0]) {
			return false
		}
		text := fold(s.Text())
		for _, synonym := range synonyms {
			if strings.Contains(text, synonym) {
				return true
			}
		}
		return false
	})
}

// fold normalises s for caption comparison.
// A Caser is not safe for concurrent use, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// hasText reports whether n has any non-blank text beneath it.
func hasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasText(c) {
			return true
		}
	}
	return false
}
