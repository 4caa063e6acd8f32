package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/imdbscrape"
)

// DefaultClientTimeout bounds a whole scrape round trip, which includes the
// server's own fetch of the title page.
const DefaultClientTimeout = 30 * time.Second

// Client sends scrape requests to a Server.
type Client struct {
	// Base URL of the server, e.g. "http://127.0.0.1:3000".
	URL string

	HTTPClient *http.Client
}

// NewClient returns a new Client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		URL:        baseURL,
		HTTPClient: &http.Client{Timeout: DefaultClientTimeout},
	}
}

// Scrape asks the server to scrape movieURL and returns the rendered
// fragment. Error pages are returned as application errors whose code
// matches the response status and whose message is the page text.
func (c *Client) Scrape(ctx context.Context, movieURL string) (string, error) {
	body, err := json.Marshal(imdbscrape.ExtractionRequest{URL: movieURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.URL, "/")+"/", bytes.NewReader(body))
	if err != nil {
		return "", imdbscrape.Errorf(imdbscrape.EINVALID, "invalid server URL %q: %v", c.URL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", imdbscrape.Wrapf(imdbscrape.EFETCH, err, "sending request to %s", c.URL)
	}
	defer resp.Body.Close()

	fragment, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", imdbscrape.Wrapf(imdbscrape.EFETCH, err, "reading response from %s", c.URL)
	}

	if resp.StatusCode != http.StatusOK {
		return "", imdbscrape.Errorf(FromErrorStatusCode(resp.StatusCode), "%s", errorText(fragment, resp.Status))
	}
	return string(fragment), nil
}

// errorText returns the visible text of an error page, or fallback if the
// page has none.
func errorText(page []byte, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fallback
	}
	if text := strings.TrimSpace(doc.Text()); text != "" {
		return text
	}
	return fallback
}
