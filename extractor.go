package imdbscrape

// Extractor pulls movie fields out of a title page.
type Extractor interface {
	// Extract is total: fields whose markup is missing are left empty and
	// input that is not HTML yields an empty Movie.
	Extract(html string) *Movie
}
