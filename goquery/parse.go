package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/imdbscrape"
)

// ParseMovie recovers a movie from a fragment rendered by
// imdbscrape.FormatMovie. Paragraphs whose label is not a known field are
// ignored. Returns EINVALID if the fragment holds no movie fields.
func ParseMovie(fragment string) (*imdbscrape.Movie, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, imdbscrape.Errorf(imdbscrape.EINVALID, "failed to parse fragment: %v", err)
	}

	movie := &imdbscrape.Movie{}
	found := 0
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		strong := p.ChildrenFiltered("strong").First()
		if strong.Length() == 0 {
			return
		}
		label := strong.Text()
		field, ok := imdbscrape.FieldByLabel(strings.TrimSpace(label))
		if !ok {
			return
		}

		value := strings.TrimPrefix(p.Text(), label)
		value = strings.TrimPrefix(value, ":")
		value = strings.TrimPrefix(value, " ")
		movie.Set(field, value)
		found++
	})

	if found == 0 {
		return nil, imdbscrape.Errorf(imdbscrape.EINVALID, "fragment contains no movie fields")
	}
	return movie, nil
}
