package orchestrator

import (
	"context"
	"sync"
)

// forEach runs fn over items on up to workers goroutines. Results keep the
// order of items. Items not started before ctx is done get skip(item).
func forEach[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) R, skip func(T) R) []R {
	if workers < 1 {
		workers = 1
	}
	out := make([]R, len(items))
	started := make([]bool, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = fn(ctx, items[i])
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
			started[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			out[i] = skip(items[i])
		}
	}
	return out
}
