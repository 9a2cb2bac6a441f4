package dynamo

import (
	"runtime"
	"sync"
)

// ParallelFor calls fn on contiguous chunks of [0, n), each at least
// minChunk long, one goroutine per chunk. fn must only touch indices in
// [start, end).
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	minChunk = max(minChunk, 1)
	workers := min(runtime.GOMAXPROCS(0), n/minChunk)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, min(lo+chunk, n))
	}
	wg.Wait()
}
