// Package parallel provides the fixed worker pool used for the detectors'
// embarrassingly parallel outer loops. Iterations only read the shared
// snapshot and write to disjoint result slots, so no locking is required.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultWorkers is the pool size used when a caller passes workers <= 0.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// ForEach runs fn(i) for every i in [0, n) on a fixed pool of workers.
// Cancellation is checked at iteration boundaries: once the context is done,
// no further iterations start and ctx.Err() is returned. Callers must treat
// a non-nil error as all-or-nothing and discard any partial results, since a
// truncated scan would report a misleadingly low fraud estimate.
func ForEach(ctx context.Context, workers, n int, fn func(i int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}

	var next int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := int(atomic.AddInt64(&next, 1)) - 1
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}

	wg.Wait()
	return ctx.Err()
}
