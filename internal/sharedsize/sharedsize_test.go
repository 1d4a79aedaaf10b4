package sharedsize

import (
	"sync"
	"testing"
)

func TestStoreLoad(t *testing.T) {
	s := New(24, 80)

	rows, cols := s.Load()
	if rows != 24 || cols != 80 {
		t.Fatalf("Load() = (%d, %d), want (24, 80)", rows, cols)
	}

	s.Store(50, 120)
	rows, cols = s.Load()
	if rows != 50 || cols != 120 {
		t.Fatalf("Load() after Store = (%d, %d), want (50, 120)", rows, cols)
	}
}

func TestConcurrentStoreLoad(t *testing.T) {
	s := New(0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n uint16) {
			defer wg.Done()
			s.Store(n, n)
		}(uint16(i))
	}
	wg.Wait()

	rows, cols := s.Load()
	if rows != cols {
		t.Fatalf("Load() = (%d, %d), want equal halves (last writer wins on a single uint32)", rows, cols)
	}
}
