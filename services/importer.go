package services

import (
	"context"

	"go.uber.org/zap"

	"artsync/config"
)

// ImportService reconciles externally parsed artwork records against the
// persisted inventory: preview (read-only matching and diffing) and execute
// (size-bounded batched apply with per-record failure isolation).
type ImportService struct {
	Config  *config.Config
	Gateway Gateway
	Runs    RunStore
	Logger  *zap.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(cfg *config.Config, gw Gateway, runs RunStore, logger *zap.Logger) *ImportService {
	return &ImportService{
		Config:  cfg,
		Gateway: gw,
		Runs:    runs,
		Logger:  logger,
	}
}

// Preview runs the matcher and diff engine over every record independently
// and partitions the batch into new, updated and unchanged. It performs
// reads only; any lookup error fails the whole preview, no partial result
// is returned.
func (s *ImportService) Preview(ctx context.Context, records []ParsedRecord) (*PreviewResult, error) {
	result := &PreviewResult{
		New:       []NewCandidate{},
		Updates:   []UpdateCandidate{},
		Unchanged: []UnchangedRef{},
	}

	for i := range records {
		rec := &records[i]
		uid := recordUID(rec, i)

		outcome, err := s.resolve(ctx, rec)
		if err != nil {
			s.Logger.Error("Preview lookup failed",
				zap.String("title_en", rec.TitleEN), zap.Error(err))
			return nil, err
		}

		switch outcome.Kind {
		case MatchNew:
			result.New = append(result.New, NewCandidate{
				UID:               uid,
				Record:            *rec,
				RequiresThumbnail: rec.ThumbnailURL == "",
				Images:            rec.Images,
			})
		case MatchUpdate:
			result.Updates = append(result.Updates, UpdateCandidate{
				UID:        uid,
				ExistingID: outcome.Existing.ID,
				Existing:   *outcome.Existing,
				Record:     *rec,
				Changes:    outcome.Changes,
			})
		case MatchUnchanged:
			result.Unchanged = append(result.Unchanged, UnchangedRef{
				UID:        uid,
				ExistingID: outcome.Existing.ID,
				TitleEN:    outcome.Existing.TitleEN,
			})
		}
	}

	s.Logger.Info("Preview assembled",
		zap.Int("records", len(records)),
		zap.Int("new", len(result.New)),
		zap.Int("updates", len(result.Updates)),
		zap.Int("unchanged", len(result.Unchanged)))
	return result, nil
}
