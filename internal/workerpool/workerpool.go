// Package workerpool runs a function over a slice on a bounded number of
// goroutines.
package workerpool

import (
	"runtime"
	"sync"
)

// Size returns the number of goroutines Map uses for n items when asked
// for workers: at most n, and runtime.NumCPU() when workers <= 0.
func Size(workers, n int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, n))
}

// Map applies fn to every item and returns the results in item order.
func Map[In, Out any](workers int, items []In, fn func(In) Out) []Out {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out
	}

	next := make(chan int)
	var wg sync.WaitGroup
	for range Size(workers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				out[i] = fn(items[i])
			}
		}()
	}
	for i := range items {
		next <- i
	}
	close(next)
	wg.Wait()
	return out
}
