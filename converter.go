package imdbscrape

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment into Markdown for terminal display.
	Convert(html string) (string, error)
}
