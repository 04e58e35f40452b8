package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the default number of mirrors processed
// concurrently.
const DefaultBatchConcurrency = 4

// PipelineFactory builds a pipeline and its initial state for one mirror.
// Each mirror gets its own state so that concurrent runs never share
// documents.
type PipelineFactory func(mirror string) (*Pipeline, *State, error)

// BatchProcessor runs the same kind of pipeline over many mirrors
// concurrently.
type BatchProcessor struct {
	// factory builds the per-mirror pipeline and state.
	factory PipelineFactory
	// concurrency bounds the number of mirrors in flight.
	concurrency int
	// logger for structured logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency sets the number of mirrors processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a batch processor around a pipeline factory.
func NewBatchProcessor(factory PipelineFactory, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultBatchConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessBatch runs the pipeline for every mirror and returns the states
// in the same order as mirrors. A failing mirror records its error on its
// state and does not stop the others; only context cancellation aborts
// the batch.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, mirrors []string) ([]*State, error) {
	states := make([]*State, len(mirrors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, mirror := range mirrors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			pipe, state, err := b.factory(mirror)
			if err != nil {
				b.logger.Error("failed to build pipeline",
					"mirror", mirror,
					"error", err,
				)
				states[i] = &State{Mirror: mirror, Err: err}
				return nil
			}

			if err := pipe.Execute(ctx, state); err != nil {
				b.logger.Error("pipeline failed",
					"mirror", mirror,
					"error", err,
				)
			}
			states[i] = state
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return states, err
	}
	return states, nil
}

// ProcessBatchWithCallback runs the pipeline for every mirror and invokes
// callback as each mirror finishes. Callback invocations are serialized.
func (b *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, mirrors []string, callback func(*State)) error {
	results := make(chan *State, len(mirrors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	go func() {
		for _, mirror := range mirrors {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				pipe, state, err := b.factory(mirror)
				if err != nil {
					results <- &State{Mirror: mirror, Err: err}
					return nil
				}
				_ = pipe.Execute(gctx, state)
				results <- state
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for state := range results {
		callback(state)
	}
	return g.Wait()
}
