package adc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_AcquireRelease(t *testing.T) {
	g := NewGate()

	g.Acquire()
	assert.False(t, g.TryAcquire(), "gate must be held")

	g.Release()
	assert.True(t, g.TryAcquire(), "gate must be free after release")
	g.Release()
}

func TestGate_ReleaseWhenFreeIsNoOp(t *testing.T) {
	g := NewGate()

	g.Release()
	g.Release()

	assert.True(t, g.TryAcquire())
	g.Release()
}

func TestGate_MutualExclusion(t *testing.T) {
	g := NewGate()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxHeld int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.Acquire()

				mu.Lock()
				holders++
				if holders > maxHeld {
					maxHeld = holders
				}
				mu.Unlock()

				time.Sleep(time.Microsecond)

				mu.Lock()
				holders--
				mu.Unlock()

				g.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxHeld, "at most one holder at any time")
}

func TestGate_AcquireBlocksUntilReleased(t *testing.T) {
	g := NewGate()
	g.Acquire()

	acquired := make(chan struct{})
	go func() {
		g.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while gate was held")
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by release")
	}
	g.Release()
}
