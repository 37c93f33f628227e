package locks

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	km := New()

	const workers = 32
	var counter, max int
	var track sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("bus-1:2025-06-01")
			defer unlock()

			track.Lock()
			counter++
			if counter > max {
				max = counter
			}
			track.Unlock()

			track.Lock()
			counter--
			track.Unlock()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("expected at most one holder per key, saw %d", max)
	}
}

func TestLockDifferentKeysIndependent(t *testing.T) {
	km := New()

	unlockA := km.Lock("bus-1:2025-06-01")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("bus-2:2025-06-01")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestEntriesReleasedWhenIdle(t *testing.T) {
	km := New()

	for i := 0; i < 10; i++ {
		unlock := km.Lock("k")
		unlock()
	}

	km.mu.Lock()
	n := len(km.entries)
	km.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no retained entries, got %d", n)
	}
}
