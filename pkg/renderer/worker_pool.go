package renderer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// columnQueue hands out the indices [next, end) one at a time
type columnQueue struct {
	mu   sync.Mutex
	next int
	end  int
}

// claim returns the next unclaimed index, or false once all are taken
func (q *columnQueue) claim() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= q.end {
		return 0, false
	}
	i := q.next
	q.next++
	return i, true
}

// WorkerPool renders the pixels of one scanline in parallel. Workers pull
// column indices from a shared queue, so no index is processed twice and
// slow pixels do not stall a fixed partition.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool with the given number of workers. A
// non-positive count selects one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls task once for every index in [0, n) and returns when all calls
// have finished. Calls run concurrently on up to GetNumWorkers goroutines.
// The first error, or cancellation of ctx, stops workers from claiming
// further indices and is returned.
func (wp *WorkerPool) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	queue := &columnQueue{end: n}
	g, ctx := errgroup.WithContext(ctx)

	workers := wp.numWorkers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i, ok := queue.claim()
				if !ok {
					return nil
				}
				if err := task(ctx, i); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
