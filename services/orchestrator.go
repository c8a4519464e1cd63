package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"artsync/models"
)

// StartRun creates the accounting row for a new import run.
func (s *ImportService) StartRun(ctx context.Context, itemsTotal int) (*models.ImportRun, error) {
	size := s.Config.BatchSize
	if size <= 0 {
		size = 30
	}
	now := time.Now()
	run := &models.ImportRun{
		ID:           uuid.NewString(),
		Status:       models.RunStatusRunning,
		ItemsTotal:   itemsTotal,
		BatchesTotal: (itemsTotal + size - 1) / size,
		StartedAt:    &now,
	}
	if err := s.Runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RunImport drives the whole approved candidate set through the batch
// runner, persisting cumulative progress to the run row after every batch.
// It returns the accumulated result; run bookkeeping failures are logged
// but do not interrupt the import itself.
func (s *ImportService) RunImport(ctx context.Context, runID string, records []ParsedRecord) *ExecuteResult {
	log := s.Logger.With(zap.String("run_id", runID))
	log.Info("Starting import run", zap.Int("items_total", len(records)))

	runner := &Runner{
		BatchSize: s.Config.BatchSize,
		Pause:     time.Duration(s.Config.BatchPauseMS) * time.Millisecond,
		Logger:    log,
	}

	acc := runner.Run(ctx, records, func(ctx context.Context, chunk []ParsedRecord) (*ExecuteResult, error) {
		return s.ExecuteBatch(ctx, chunk), nil
	}, func(p Progress) {
		log.Info("Import progress",
			zap.Int("current_batch", p.CurrentBatch),
			zap.Int("total_batches", p.TotalBatches),
			zap.Int("items_processed", p.ItemsProcessed),
			zap.Int("items_total", p.ItemsTotal))
		if err := s.Runs.Update(ctx, runID, map[string]any{
			"items_processed": p.ItemsProcessed,
			"batches_done":    p.CurrentBatch,
		}); err != nil {
			log.Warn("Failed to persist run progress", zap.Error(err))
		}
	})

	created := len(acc.Created)
	updated := len(acc.Updated)
	errCount := len(acc.Errors)

	status := models.RunStatusCompleted
	if created+updated == 0 && errCount > 0 {
		status = models.RunStatusFailed
	}
	errsJSON, _ := json.Marshal(acc.Errors)
	now := time.Now()
	if err := s.Runs.Update(ctx, runID, map[string]any{
		"status":        status,
		"created_count": created,
		"updated_count": updated,
		"error_count":   errCount,
		"errors":        errsJSON,
		"finished_at":   now,
	}); err != nil {
		log.Error("Failed to finalize run row", zap.Error(err))
	}

	log.Info("Import run finished",
		zap.String("status", status),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("errors", errCount))
	return acc
}
