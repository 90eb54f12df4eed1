package fairrw

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpinMutexMutualExclusion(t *testing.T) {
	var mu SpinMutex
	var counter int
	var wg sync.WaitGroup

	const goroutines = 50
	const perGoroutine = 200

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				mu.Lock()
				counter++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines*perGoroutine, counter)
}

func TestSpinMutexUnlockWakesWaiter(t *testing.T) {
	var mu SpinMutex
	mu.Lock()

	done := make(chan struct{})
	go func() {
		mu.Lock()
		close(done)
		mu.Unlock()
	}()

	select {
	case <-done:
		t.Fatal("second Lock succeeded while the first holder still held the mutex")
	case <-time.After(20 * time.Millisecond):
	}

	mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Lock never acquired after Unlock")
	}
}
