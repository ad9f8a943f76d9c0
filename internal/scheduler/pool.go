package scheduler

import (
	"context"
	"sync"

	"github.com/emberhav/pricewatch/internal/domain"
)

// runPool fans items out to a bounded set of workers and blocks until
// every item has been processed or the context is cancelled. Each item
// is handled by exactly one worker.
func runPool(ctx context.Context, workers int, items []*domain.TrackedItem, fn func(context.Context, *domain.TrackedItem)) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *domain.TrackedItem)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				fn(ctx, item)
			}
		}()
	}

	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
