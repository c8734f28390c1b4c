package performance

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 10; i++ {
		d.Debounce("reload", func() { calls.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	fired := map[string]bool{}

	mark := func(key string) func() {
		return func() {
			mu.Lock()
			fired[key] = true
			mu.Unlock()
		}
	}

	d.Debounce("a", mark("a"))
	d.Debounce("b", mark("b"))

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, fired["a"])
	assert.True(t, fired["b"])
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32

	d.Debounce("reload", func() { calls.Add(1) })
	d.Cancel("reload")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestThrottledExecutor_FirstRunsImmediately(t *testing.T) {
	te := NewThrottledExecutor(50 * time.Millisecond)
	var calls atomic.Int32

	te.Execute(func() { calls.Add(1) })

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestThrottledExecutor_BurstRunsAtMostTwice(t *testing.T) {
	te := NewThrottledExecutor(60 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		te.Execute(func() { calls.Add(1) })
	}

	// One immediate execution plus one deferred for the trailing burst.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestThrottledExecutor_StopCancelsPending(t *testing.T) {
	te := NewThrottledExecutor(60 * time.Millisecond)
	var calls atomic.Int32

	te.Execute(func() { calls.Add(1) })
	te.Execute(func() { calls.Add(1) })
	te.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
