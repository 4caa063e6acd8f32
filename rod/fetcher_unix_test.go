//go:build integration && !windows

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/imdbscrape/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestFetcher_RecycledBrowserOutlivesItsLastLease(t *testing.T) {
	t.Parallel()

	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/title/tt0245429" {
			close(arrived)
			<-release
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1 data-testid="hero__pageTitle">%s</h1></body></html>`, r.URL.Path)
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(rod.WithManagerOptions(rod.WithMaxPages(1)))
	require.NoError(t, err)
	defer fetcher.Close()

	first := fetcher.LauncherPID()
	require.NotZero(t, first)
	require.True(t, alive(first))

	slow := make(chan error, 1)
	go func() {
		_, err := fetcher.Fetch(context.Background(), srv.URL+"/title/tt0245429")
		slow <- err
	}()
	select {
	case <-arrived:
	case <-time.After(30 * time.Second):
		close(release)
		t.Fatal("slow fetch never reached the server")
	}

	html, err := fetcher.Fetch(context.Background(), srv.URL+"/title/tt0111161")
	require.NoError(t, err)
	assert.Contains(t, html, "/title/tt0111161")

	second := fetcher.LauncherPID()
	assert.NotEqual(t, first, second, "browser should be replaced after one page")
	assert.True(t, alive(first), "replaced browser must stay up while a fetch still holds it")

	close(release)
	require.NoError(t, <-slow)
	assert.Eventually(t, func() bool { return !alive(first) }, 5*time.Second, 50*time.Millisecond,
		"replaced browser should exit once its last lease is released")

	require.NoError(t, fetcher.Close())
	assert.Eventually(t, func() bool { return !alive(second) }, 5*time.Second, 50*time.Millisecond,
		"current browser should exit on Close")
}
