package workerpool

import (
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSize(t *testing.T) {
	cpus := runtime.NumCPU()
	tests := []struct {
		workers, n, want int
	}{
		{4, 10, 4},
		{8, 2, 2},
		{0, 1000, min(cpus, 1000)},
		{-1, 1, 1},
		{3, 0, 1},
	}
	for _, tt := range tests {
		if got := Size(tt.workers, tt.n); got != tt.want {
			t.Errorf("Size(%d, %d) = %d, want %d", tt.workers, tt.n, got, tt.want)
		}
	}
}

func TestMapPreservesOrder(t *testing.T) {
	books := []string{"genesis", "exodus", "leviticus", "numbers", "deuteronomy", "joshua"}
	got := Map(3, books, strings.ToUpper)

	if len(got) != len(books) {
		t.Fatalf("got %d results, want %d", len(got), len(books))
	}
	for i, b := range books {
		if got[i] != strings.ToUpper(b) {
			t.Errorf("got[%d] = %q, want %q", i, got[i], strings.ToUpper(b))
		}
	}
}

func TestMapEmpty(t *testing.T) {
	if got := Map(2, []int{}, func(n int) int { return n }); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
	if got := Map(2, nil, func(n int) int { return n }); got == nil || len(got) != 0 {
		t.Errorf("Map(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 40)
	Map(3, items, func(int) int {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return 0
	})
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}
