package imdbscrape

import "context"

// Fetcher retrieves the HTML of a title page.
type Fetcher interface {
	// Fetch issues a single request for url and returns the complete body.
	// Transport failures and non-2xx responses return an EFETCH error.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
