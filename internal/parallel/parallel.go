// Package parallel provides the data-parallel primitives used by the
// simulation: a bounded parallel-for over write-disjoint work items and
// contact-graph island partitioning.
//
// Only phases with no shared mutable state go through here. Contact
// resolution stays sequential (or island-local) because overlapping contacts
// mutate shared body velocities.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach runs fn(i) for i in [0, n) across at most workers goroutines.
// workers <= 0 selects GOMAXPROCS. Each index is visited exactly once; fn
// must only write state owned by its own index.
func ForEach(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	// contiguous chunks keep each worker on adjacent memory
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// Map applies fn to every item concurrently and collects the results in
// input order.
func Map[T, R any](items []T, workers int, fn func(T) R) []R {
	out := make([]R, len(items))
	ForEach(len(items), workers, func(i int) {
		out[i] = fn(items[i])
	})
	return out
}
