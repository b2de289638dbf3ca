package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twine/internal/adapters/watcher"
)

func TestDebouncer_Coalesces(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Add("/tpl/b.html")
		d.Add("/tpl/a.html")
		d.Add("/tpl/b.html")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/tpl/a.html", "/tpl/b.html"}, calls[0])
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var count int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			mu.Lock()
			count++
			mu.Unlock()
		})

		d.Add("/tpl/a.html")
		time.Sleep(50 * time.Millisecond)
		d.Add("/tpl/b.html")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 0, count)
		mu.Unlock()

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 1, count)
		mu.Unlock()
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Flush()
		assert.Empty(t, calls)

		d.Add("/tpl/a.html")
		d.Flush()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/tpl/a.html"}, calls[0])

		// The stopped timer must not deliver the same paths again.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, calls, 1)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add("/tpl/a.html")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("/tpl/b.html")
		d.Flush()
	})
}
