package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*evaluatorConfig)

type evaluatorConfig struct {
	workers   int
	batchSize int
}

// WithWorkers sets the number of chunks evaluated at once
func WithWorkers(workers int) EvaluatorOption {
	return func(c *evaluatorConfig) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// WithBatchSize sets the list length below which evaluation is sequential,
// and the minimum chunk size above it.
func WithBatchSize(size int) EvaluatorOption {
	return func(c *evaluatorConfig) {
		if size > 0 {
			c.batchSize = size
		}
	}
}

// ConcurrentEvaluator splits long lists into chunks evaluated in parallel.
// Matches keep their input order.
type ConcurrentEvaluator[T any] struct {
	workers   int
	batchSize int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator[T any](opts ...EvaluatorOption) *ConcurrentEvaluator[T] {
	cfg := evaluatorConfig{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ConcurrentEvaluator[T]{workers: cfg.workers, batchSize: cfg.batchSize}
}

// Evaluate returns the items filter matches.
func (e *ConcurrentEvaluator[T]) Evaluate(ctx context.Context, filter CompiledFilter[T], items []T) ([]T, error) {
	if len(items) < e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return matchAll(filter, items), nil
	}

	chunkSize := max(len(items)/e.workers, e.batchSize)
	chunks := make([][]T, (len(items)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(items))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = matchAll(filter, items[start:end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []T
	for _, chunk := range chunks {
		matches = append(matches, chunk...)
	}
	return matches, nil
}

func matchAll[T any](filter Filter[T], items []T) []T {
	var matches []T
	for _, item := range items {
		if filter.Match(item) {
			matches = append(matches, item)
		}
	}
	return matches
}
