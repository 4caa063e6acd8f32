package rod

import (
	"errors"
	"testing"

	"github.com/fwojciec/imdbscrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLauncher hands out browserless instances and records them.
type fakeLauncher struct {
	launched []*instance
	fail     bool
}

func (l *fakeLauncher) launch() (*instance, error) {
	if l.fail {
		return nil, errors.New("chrome not found")
	}
	in := &instance{}
	l.launched = append(l.launched, in)
	return in, nil
}

func TestBrowserManager_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("recycles after max pages", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch, WithMaxPages(2))
		require.NoError(t, err)

		for range 2 {
			_, release, err := bm.Acquire()
			require.NoError(t, err)
			release()
		}
		assert.Len(t, l.launched, 1)

		_, release, err := bm.Acquire()
		require.NoError(t, err)
		defer release()

		require.Len(t, l.launched, 2)
		assert.True(t, l.launched[0].done)
		assert.Same(t, l.launched[1], bm.current)
	})

	t.Run("keeps retired browser open while leased", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch, WithMaxPages(1))
		require.NoError(t, err)

		_, inFlight, err := bm.Acquire()
		require.NoError(t, err)

		_, release, err := bm.Acquire()
		require.NoError(t, err)
		defer release()

		old := l.launched[0]
		assert.True(t, old.retired)
		assert.False(t, old.done)

		inFlight()
		assert.True(t, old.done)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch)
		require.NoError(t, err)

		_, first, err := bm.Acquire()
		require.NoError(t, err)
		_, second, err := bm.Acquire()
		require.NoError(t, err)
		defer second()

		first()
		first()

		assert.Equal(t, 1, bm.current.active)
	})

	t.Run("keeps current browser when relaunch fails", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch, WithMaxPages(1))
		require.NoError(t, err)

		_, release, err := bm.Acquire()
		require.NoError(t, err)
		release()

		l.fail = true
		_, release, err = bm.Acquire()
		require.NoError(t, err)
		release()

		assert.Same(t, l.launched[0], bm.current)
		assert.False(t, l.launched[0].done)
	})

	t.Run("returns error after close", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch)
		require.NoError(t, err)
		require.NoError(t, bm.Close())
		require.NoError(t, bm.Close())

		_, _, err = bm.Acquire()
		require.Error(t, err)
		assert.Equal(t, imdbscrape.EINTERNAL, imdbscrape.ErrorCode(err))
		assert.True(t, l.launched[0].done)
	})

	t.Run("ignores non-positive max pages", func(t *testing.T) {
		t.Parallel()

		l := &fakeLauncher{}
		bm, err := newBrowserManager(l.launch, WithMaxPages(0))
		require.NoError(t, err)

		assert.Equal(t, int64(DefaultMaxPages), bm.maxPages)
	})
}

func TestNewBrowserManager_LaunchFailure(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{fail: true}
	_, err := newBrowserManager(l.launch)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}
