package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"artsync/models"
)

// ExecuteBatch applies one approved batch of records against the gateway,
// sequentially. Match resolution is re-run per record instead of trusting an
// earlier preview; the two calls may observe different persisted state and
// the re-check is deliberate.
//
// Any error while processing a single record is caught, recorded as
// "{title}: {message}" and processing continues; a single bad record never
// aborts the batch.
func (s *ImportService) ExecuteBatch(ctx context.Context, records []ParsedRecord) *ExecuteResult {
	result := &ExecuteResult{
		Created: []uint{},
		Updated: []uint{},
		Errors:  []string{},
	}

	for i := range records {
		rec := &records[i]

		existing, err := s.match(ctx, rec)
		if err != nil {
			result.Errors = append(result.Errors, recordError(rec, err))
			continue
		}

		if existing == nil {
			id, err := s.insertRecord(ctx, rec)
			if err != nil {
				result.Errors = append(result.Errors, recordError(rec, err))
				continue
			}
			result.Created = append(result.Created, id)
			continue
		}

		if err := s.updateRecord(ctx, existing.ID, rec); err != nil {
			result.Errors = append(result.Errors, recordError(rec, err))
			continue
		}
		result.Updated = append(result.Updated, existing.ID)
	}

	s.Logger.Info("Batch executed",
		zap.Int("records", len(records)),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("errors", len(result.Errors)))
	return result
}

// insertRecord creates a new artwork from the allow-listed fields plus the
// source URL and the resolved thumbnail. Curator fields start empty.
func (s *ImportService) insertRecord(ctx context.Context, rec *ParsedRecord) (uint, error) {
	art := &models.Artwork{
		TitleEN:      rec.TitleEN,
		TitleCN:      rec.TitleCN,
		Year:         rec.Year,
		Type:         rec.Type,
		Dimensions:   rec.Dimensions,
		Materials:    rec.Materials,
		Duration:     rec.Duration,
		SourceURL:    rec.SourceURL,
		ThumbnailURL: rec.ThumbnailURL,
	}
	return s.Gateway.Insert(ctx, art)
}

// updateRecord builds a partial update payload from the allow-listed fields
// present on the incoming record, touches updated_at, and conditionally sets
// the thumbnail only while the stored one is still empty. An existing
// thumbnail is never replaced by import.
func (s *ImportService) updateRecord(ctx context.Context, id uint, rec *ParsedRecord) error {
	updates := map[string]any{
		"updated_at": time.Now(),
	}
	for _, f := range websiteFields {
		if v := f.incoming(rec); v != "" {
			updates[f.name] = v
		}
	}

	if rec.ThumbnailURL != "" {
		current, err := s.Gateway.Thumbnail(ctx, id)
		if err != nil {
			return err
		}
		if current == "" {
			updates["thumbnail_url"] = rec.ThumbnailURL
		}
	}

	return s.Gateway.Update(ctx, id, updates)
}

func recordError(rec *ParsedRecord, err error) string {
	return fmt.Sprintf("%s: %v", rec.TitleEN, err)
}
