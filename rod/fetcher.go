package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/imdbscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements imdbscrape.Fetcher at compile time.
var _ imdbscrape.Fetcher = (*Fetcher)(nil)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves rendered HTML using headless Chrome, for title pages
// whose fields are filled in by scripts.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager        *BrowserManager
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
	closed         atomic.Bool
}

type fetcherConfig struct {
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
	managerOpts    []ManagerOption
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

// WithFetchTimeout sets the time allowed for one page to load.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *fetcherConfig) {
		c.userAgent = ua
	}
}

// WithAcceptLanguage overrides the browser's Accept-Language header, which
// selects the language of the title page.
func WithAcceptLanguage(lang string) Option {
	return func(c *fetcherConfig) {
		c.acceptLanguage = lang
	}
}

// WithManagerOptions passes options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, opts...)
	}
}

// NewFetcher launches a headless Chrome browser and returns a Fetcher for it.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.managerOpts...)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		manager:        manager,
		timeout:        cfg.timeout,
		userAgent:      cfg.userAgent,
		acceptLanguage: cfg.acceptLanguage,
	}, nil
}

// Fetch navigates to the URL and returns the HTML once the page has loaded.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", imdbscrape.Errorf(imdbscrape.EINTERNAL, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", imdbscrape.Wrapf(imdbscrape.EFETCH, err, "fetching %s", url)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	browser, release, err := f.manager.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	html, err := f.render(ctx, browser, url)
	if err != nil {
		return "", imdbscrape.Wrapf(imdbscrape.EFETCH, err, "rendering %s", url)
	}
	return html, nil
}

func (f *Fetcher) render(ctx context.Context, browser *rod.Browser, url string) (string, error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if f.userAgent != "" || f.acceptLanguage != "" {
		ua := f.userAgent
		if ua == "" {
			// The override always replaces the User-Agent, so keep the browser's own.
			version, err := proto.BrowserGetVersion{}.Call(browser)
			if err != nil {
				return "", err
			}
			ua = version.UserAgent
		}
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: f.acceptLanguage,
		}); err != nil {
			return "", err
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the current browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
