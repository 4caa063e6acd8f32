package mock

import "github.com/fwojciec/imdbscrape"

var _ imdbscrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of imdbscrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
