package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/imdbscrape"
	main "github.com/fwojciec/imdbscrape/cmd/imdbscrape"
	"github.com/fwojciec/imdbscrape/goquery"
	imdbhttp "github.com/fwojciec/imdbscrape/http"
	"github.com/fwojciec/imdbscrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const titleURL = "https://imdb.com/title/tt0111161"

const titlePage = `<html><body>
<h1 data-testid="hero__pageTitle">The Shawshank Redemption</h1>
<span data-testid="plot-xl">Two imprisoned men bond over a number of years.</span>
<ul>
	<li><span>Genres</span><div><ul><li><a href="#">Drama</a></li></ul></div></li>
	<li><span>Runtime</span><div>2h 22m</div></li>
</ul>
</body></html>`

// startServer runs a scrape server backed by a mock fetcher and returns its
// host, port and a counter of fetches.
func startServer(t *testing.T) (host, port string, fetches *atomic.Int32) {
	t.Helper()

	fetches = &atomic.Int32{}
	s := imdbhttp.NewServer()
	s.Fetcher = &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			fetches.Add(1)
			return titlePage, nil
		},
	}
	s.Extractor = goquery.NewExtractor()

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	host, port, err := net.SplitHostPort(ts.Listener.Addr().String())
	require.NoError(t, err)
	return host, port, fetches
}

func TestCLI_ShowsHelpWhenAsked(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "imdbscrape")
	assert.Contains(t, stdout.String(), "--port")
}

// Story: Form Validation
//
// The form is checked locally. A missing URL or an unusable port is
// reported without contacting the server.

func TestCLI_RequiresURL(t *testing.T) {
	t.Parallel()

	_, port, fetches := startServer(t)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--port", port}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, imdbscrape.EINVALID, imdbscrape.ErrorCode(err))
	assert.Contains(t, imdbscrape.ErrorMessage(err), "URL is required")
	assert.Zero(t, fetches.Load())
}

func TestCLI_RejectsBadPorts(t *testing.T) {
	t.Parallel()

	for _, port := range []string{"", "abc", "80", "1023", "65536", "70000"} {
		t.Run(port, func(t *testing.T) {
			t.Parallel()

			m := main.NewMain()
			var stdout, stderr bytes.Buffer

			err := m.Run(context.Background(), []string{titleURL, "--port", port}, &stdout, &stderr)

			require.Error(t, err)
			assert.Equal(t, imdbscrape.EINVALID, imdbscrape.ErrorCode(err))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestCLI_RejectsUnknownOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{titleURL, "--output", "yaml"}, &stdout, &stderr)

	assert.Error(t, err)
}

// Story: Scraping
//
// A valid form sends one request and prints the movie in the chosen format.

func TestCLI_PrintsMarkdownByDefault(t *testing.T) {
	t.Parallel()

	host, port, fetches := startServer(t)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{titleURL, "--host", host, "--port", port}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())
	assert.Contains(t, stdout.String(), "**Title**: The Shawshank Redemption")
	assert.Contains(t, stdout.String(), "**Genre**: Drama")
	assert.Contains(t, stdout.String(), "**Rating**:")
}

func TestCLI_PrintsRawHTML(t *testing.T) {
	t.Parallel()

	host, port, _ := startServer(t)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{titleURL, "--host", host, "--port", port, "--output", "html"}, &stdout, &stderr)

	require.NoError(t, err)
	want := imdbscrape.FormatMovie(&imdbscrape.Movie{
		Title:       "The Shawshank Redemption",
		Description: "Two imprisoned men bond over a number of years.",
		Genre:       "Drama",
		Duration:    "2h 22m",
	})
	assert.Equal(t, want+"\n", stdout.String())
}

func TestCLI_PrintsJSON(t *testing.T) {
	t.Parallel()

	host, port, _ := startServer(t)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{titleURL, "--host", host, "--port", port, "-o", "json"}, &stdout, &stderr)

	require.NoError(t, err)
	var movie imdbscrape.Movie
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &movie))
	assert.Equal(t, "The Shawshank Redemption", movie.Title)
	assert.Equal(t, "2h 22m", movie.Duration)
	assert.Empty(t, movie.Rating)
}

func TestCLI_ReportsServerRejection(t *testing.T) {
	t.Parallel()

	host, port, fetches := startServer(t)
	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"https://example.com/", "--host", host, "--port", port}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, imdbscrape.EINVALID, imdbscrape.ErrorCode(err))
	assert.Contains(t, err.Error(), "URL must correspond to an IMDB title page")
	assert.Zero(t, fetches.Load())
	assert.Empty(t, stdout.String())
}

func TestCLI_ReportsUnreachableServer(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	require.NoError(t, ln.Close())

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err = m.Run(context.Background(), []string{titleURL, "--port", port}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, imdbscrape.EFETCH, imdbscrape.ErrorCode(err))
}

func TestScrapeCmd_ConvertsFragment(t *testing.T) {
	t.Parallel()

	host, port, _ := startServer(t)
	var converted string
	var stdout bytes.Buffer
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Client: imdbhttp.NewClient("http://" + net.JoinHostPort(host, port)),
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				converted = html
				return "converted", nil
			},
		},
	}

	cmd := &main.ScrapeCmd{URL: titleURL, Output: "markdown"}
	err := cmd.Run(deps)

	require.NoError(t, err)
	assert.Contains(t, converted, "<p><strong>Title</strong>: The Shawshank Redemption</p>")
	assert.Equal(t, "converted\n", stdout.String())
}

func TestScrapeCmd_ReturnsConverterError(t *testing.T) {
	t.Parallel()

	host, port, _ := startServer(t)
	var stdout bytes.Buffer
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: &stdout,
		Client: imdbhttp.NewClient("http://" + net.JoinHostPort(host, port)),
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "", imdbscrape.Errorf(imdbscrape.EINTERNAL, "conversion failed")
			},
		},
	}

	cmd := &main.ScrapeCmd{URL: titleURL, Output: "markdown"}
	err := cmd.Run(deps)

	require.Error(t, err)
	assert.Equal(t, "conversion failed", imdbscrape.ErrorMessage(err))
	assert.Empty(t, stdout.String())
}
