package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Progress is emitted after every successfully applied batch of a run.
type Progress struct {
	CurrentBatch   int `json:"current_batch"`
	TotalBatches   int `json:"total_batches"`
	ItemsProcessed int `json:"items_processed"`
	ItemsTotal     int `json:"items_total"`
}

// BatchFunc applies exactly one batch and returns its result. An error means
// the batch call itself could not be completed (transport failure), as
// opposed to per-record errors inside a delivered batch, which are carried
// in the result.
type BatchFunc func(ctx context.Context, records []ParsedRecord) (*ExecuteResult, error)

// Runner slices an approved candidate set into size-bounded batches and
// applies them strictly in order, accumulating created/updated/errors.
// Batches share no state, but batch N+1 is not dispatched before batch N's
// outcome is known so the cumulative counts stay authoritative.
type Runner struct {
	BatchSize int
	Pause     time.Duration
	Logger    *zap.Logger
}

// Run dispatches all batches sequentially. A transport failure appends one
// synthetic batch-level error and stops the run; results of already
// completed batches are retained, not rolled back. Per-record errors never
// stop the run. onProgress may be nil.
func (r *Runner) Run(ctx context.Context, records []ParsedRecord, apply BatchFunc, onProgress func(Progress)) *ExecuteResult {
	acc := &ExecuteResult{
		Created: []uint{},
		Updated: []uint{},
		Errors:  []string{},
	}

	size := r.BatchSize
	if size <= 0 {
		size = 30
	}
	total := (len(records) + size - 1) / size

	for b := 0; b < total; b++ {
		start := b * size
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		if err := ctx.Err(); err != nil {
			acc.Errors = append(acc.Errors, fmt.Sprintf("batch %d/%d: %v", b+1, total, err))
			break
		}

		res, err := apply(ctx, chunk)
		if err != nil {
			r.Logger.Error("Batch call failed, stopping run",
				zap.Int("batch", b+1), zap.Int("total_batches", total), zap.Error(err))
			acc.Errors = append(acc.Errors, fmt.Sprintf("batch %d/%d: %v", b+1, total, err))
			break
		}
		acc.Merge(res)

		if onProgress != nil {
			onProgress(Progress{
				CurrentBatch:   b + 1,
				TotalBatches:   total,
				ItemsProcessed: end,
				ItemsTotal:     len(records),
			})
		}

		// Throttle between batches; not correctness-bearing.
		if r.Pause > 0 && b+1 < total {
			select {
			case <-time.After(r.Pause):
			case <-ctx.Done():
			}
		}
	}

	return acc
}
