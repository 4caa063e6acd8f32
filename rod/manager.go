package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/imdbscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages a browser renders before
// it is replaced.
const DefaultMaxPages = 75

// instance is one launched browser and the pages leased from it.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	served  int64 // pages leased over the instance's lifetime
	active  int   // pages currently leased
	retired bool
	done    bool
}

func (in *instance) close() error {
	if in.done {
		return nil
	}
	in.done = true

	var err error
	if in.browser != nil {
		err = in.browser.Close()
	}
	if in.launcher != nil {
		in.launcher.Kill()
	}
	return err
}

// BrowserManager leases a shared headless browser to concurrent fetches and
// replaces it after maxPages leases, since Chrome's memory baseline grows
// with every page it renders. A replaced browser is closed once its last
// lease is released.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *instance
	maxPages int64
	closed   bool

	launch func() (*instance, error)
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of leases before the browser is replaced.
// Values below 1 keep the default.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// NewBrowserManager launches a headless browser and returns a manager for it.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	return newBrowserManager(launchHeadless, opts...)
}

func newBrowserManager(launch func() (*instance, error), opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		launch:   launch,
	}
	for _, opt := range opts {
		opt(bm)
	}

	in, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.current = in
	return bm, nil
}

// Acquire leases the current browser. The returned release func must be
// called once the caller has finished with the browser's page.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, imdbscrape.Errorf(imdbscrape.EINTERNAL, "browser manager is closed")
	}
	if bm.current.served >= bm.maxPages {
		bm.recycle()
	}

	in := bm.current
	in.served++
	in.active++

	var once sync.Once
	release := func() {
		once.Do(func() {
			bm.mu.Lock()
			defer bm.mu.Unlock()
			in.active--
			if in.retired && in.active == 0 {
				_ = in.close()
			}
		})
	}
	return in.browser, release, nil
}

// recycle replaces the current browser with a fresh one. If the launch
// fails the current browser stays in service.
// Must be called with mu held.
func (bm *BrowserManager) recycle() {
	fresh, err := bm.launch()
	if err != nil {
		return
	}

	old := bm.current
	bm.current = fresh
	old.retired = true
	if old.active == 0 {
		_ = old.close()
	}
}

// Close shuts down the current browser. Browsers with outstanding leases
// are closed as the leases are released. Close is safe to call multiple
// times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	bm.current.retired = true
	return bm.current.close()
}

// LauncherPID returns the process ID of the current browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil || bm.current.launcher == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// launchHeadless starts a headless Chrome with stability flags.
func launchHeadless() (*instance, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &instance{browser: browser, launcher: l}, nil
}
