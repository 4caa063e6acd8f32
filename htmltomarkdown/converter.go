package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/fwojciec/imdbscrape"
)

// Ensure Converter implements imdbscrape.Converter at compile time.
var _ imdbscrape.Converter = (*Converter)(nil)

// Converter renders movie fragments and error pages as Markdown for display
// in a terminal.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms an HTML fragment into Markdown. Each field paragraph
// becomes one line with its label in bold.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", imdbscrape.Errorf(imdbscrape.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", imdbscrape.Wrapf(imdbscrape.EINTERNAL, err, "converting HTML to Markdown")
	}

	return strings.TrimSpace(result), nil
}

// ConvertMovie renders m as a fragment and converts it to Markdown.
func (c *Converter) ConvertMovie(m *imdbscrape.Movie) (string, error) {
	return c.Convert(imdbscrape.FormatMovie(m))
}
