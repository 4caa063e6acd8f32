package imdbscrape

import "regexp"

// SupportedURLPattern matches the title pages the service will scrape.
var SupportedURLPattern = regexp.MustCompile(`^https://imdb\.com/title/.+`)

// ExtractionRequest is a request to scrape a single title page.
type ExtractionRequest struct {
	URL string `json:"url"`
}

// Validate returns EINVALID if the URL is not a supported title page.
func (r *ExtractionRequest) Validate() error {
	if !SupportedURLPattern.MatchString(r.URL) {
		return Errorf(EINVALID, "URL must correspond to an IMDB title page")
	}
	return nil
}
