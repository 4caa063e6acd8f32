package mock

import "github.com/fwojciec/imdbscrape"

var _ imdbscrape.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of imdbscrape.Extractor.
type Extractor struct {
	ExtractFn func(html string) *imdbscrape.Movie
}

func (e *Extractor) Extract(html string) *imdbscrape.Movie {
	return e.ExtractFn(html)
}
