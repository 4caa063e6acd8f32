// Package goquery implements imdbscrape.Extractor on top of goquery tree
// queries, and parses rendered movie fragments back into movies.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/imdbscrape"
)

// Ensure Extractor implements imdbscrape.Extractor at compile time.
var _ imdbscrape.Extractor = (*Extractor)(nil)

// Selectors tried in order for the fields that are not introduced by a
// caption on the page.
var (
	titleSelectors = compile(
		`h1[data-testid="hero__pageTitle"]`,
		`h1[data-testid="hero-title-block__title"]`,
		`h1`,
	)
	descriptionSelectors = compile(
		`[data-testid="plot-xl"]`,
		`[data-testid="plot"]`,
		`[data-testid^="plot"]`,
	)
	ratingFallbackSelectors = compile(
		`[data-testid="hero-rating-bar__aggregate-rating__score"] > span`,
	)
)

func compile(selectors ...string) []goquery.Matcher {
	matchers := make([]goquery.Matcher, 0, len(selectors))
	for _, sel := range selectors {
		matchers = append(matchers, cascadia.MustCompile(sel))
	}
	return matchers
}

// numericRe matches a rating as displayed, e.g. "9.3" or "9,3".
var numericRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)

// Extractor locates movie fields on an IMDb title page.
// Extractor is safe for concurrent use by multiple goroutines.
type Extractor struct {
	labels *labelMatcher
}

// Option configures an Extractor.
type Option func(*extractorConfig)

type extractorConfig struct {
	labels imdbscrape.Labels
}

// WithLabels replaces the captions used to find Genre, Rating and Duration.
// Defaults to imdbscrape.DefaultLabels().
func WithLabels(labels imdbscrape.Labels) Option {
	return func(c *extractorConfig) {
		c.labels = labels
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	cfg := &extractorConfig{
		labels: imdbscrape.DefaultLabels(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Extractor{labels: newLabelMatcher(cfg.labels)}
}

// fieldRule reads one field from a parsed page.
type fieldRule struct {
	field   imdbscrape.Field
	extract func(doc *goquery.Document) (string, bool)
}

func (e *Extractor) rules() []fieldRule {
	return []fieldRule{
		{imdbscrape.FieldTitle, extractTitle},
		{imdbscrape.FieldDescription, extractDescription},
		{imdbscrape.FieldGenre, e.extractGenre},
		{imdbscrape.FieldRating, e.extractRating},
		{imdbscrape.FieldDuration, e.extractDuration},
	}
}

// Extract parses rawHTML and returns every field it can find.
func (e *Extractor) Extract(rawHTML string) *imdbscrape.Movie {
	movie := &imdbscrape.Movie{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return movie
	}

	for _, rule := range e.rules() {
		if value, ok := rule.extract(doc); ok {
			movie.Set(rule.field, value)
		}
	}
	return movie
}

func extractTitle(doc *goquery.Document) (string, bool) {
	return firstText(doc, titleSelectors)
}

func extractDescription(doc *goquery.Document) (string, bool) {
	return firstText(doc, descriptionSelectors)
}

// extractGenre collects the links listed next to every Genre caption:
// span(caption) ~ div > ul > li > a.
func (e *Extractor) extractGenre(doc *goquery.Document) (string, bool) {
	captions := e.labels.find(doc, "span", imdbscrape.FieldGenre)
	if captions.Length() == 0 {
		return "", false
	}

	links := captions.NextAllFiltered("div").
		ChildrenFiltered("ul").
		ChildrenFiltered("li").
		ChildrenFiltered("a")

	var genres []string
	inDocumentOrder(doc, "a", links).Each(func(_ int, a *goquery.Selection) {
		if text := normalizeSpace(a.Text()); text != "" {
			genres = append(genres, text)
		}
	})
	return strings.Join(genres, " "), len(genres) > 0
}

// extractRating returns the first numeric score shown next to a rating
// caption: div(caption) ~ a > div > div > div > div > span. Pages without
// the caption fall back to the aggregate rating widget.
func (e *Extractor) extractRating(doc *goquery.Document) (string, bool) {
	scores := e.labels.find(doc, "div", imdbscrape.FieldRating).
		NextAllFiltered("a").
		ChildrenFiltered("div").
		ChildrenFiltered("div").
		ChildrenFiltered("div").
		ChildrenFiltered("div").
		ChildrenFiltered("span")

	if rating, ok := firstNumeric(inDocumentOrder(doc, "span", scores)); ok {
		return rating, true
	}
	for _, m := range ratingFallbackSelectors {
		if rating, ok := firstNumeric(doc.FindMatcher(m)); ok {
			return rating, true
		}
	}
	return "", false
}

// extractDuration returns the first value following a duration caption:
// span(caption) ~ div.
func (e *Extractor) extractDuration(doc *goquery.Document) (string, bool) {
	values := e.labels.find(doc, "span", imdbscrape.FieldDuration).NextAllFiltered("div")
	if values.Length() == 0 {
		return "", false
	}
	text := normalizeSpace(inDocumentOrder(doc, "div", values).First().Text())
	return text, text != ""
}

// firstText returns the text of the first selector that matches an element
// with non-empty text.
func firstText(doc *goquery.Document, selectors []goquery.Matcher) (string, bool) {
	for _, m := range selectors {
		var text string
		doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = normalizeSpace(s.Text())
			return text == ""
		})
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// firstNumeric returns the first element text that looks like a score.
func firstNumeric(sel *goquery.Selection) (string, bool) {
	var score string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if numericRe.MatchString(text) {
			score = text
			return false
		}
		return true
	})
	return score, score != ""
}

// inDocumentOrder returns the elements of sel ordered as they appear in doc.
// Traversals starting from several captions produce their union in
// arbitrary order; tag narrows the scan to the element type being collected.
func inDocumentOrder(doc *goquery.Document, tag string, sel *goquery.Selection) *goquery.Selection {
	return doc.Find(tag).FilterSelection(sel)
}

// normalizeSpace trims s and collapses inner runs of whitespace.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
