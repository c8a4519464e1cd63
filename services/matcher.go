package services

import (
	"context"
	"fmt"

	"artsync/models"
)

// match resolves one parsed record to zero or one existing artwork.
//
// A non-empty source URL with an exact hit is authoritative regardless of
// title. Otherwise the english title must match exactly one artwork; zero or
// multiple title hits resolve to nil. Ambiguous title collisions are never
// auto-resolved so an import can not silently overwrite the wrong artwork.
func (s *ImportService) match(ctx context.Context, rec *ParsedRecord) (*models.Artwork, error) {
	if rec.SourceURL != "" {
		art, err := s.Gateway.FindBySourceURL(ctx, rec.SourceURL)
		if err != nil {
			return nil, err
		}
		if art != nil {
			return art, nil
		}
	}

	matches, err := s.Gateway.FindByTitle(ctx, rec.TitleEN)
	if err != nil {
		return nil, err
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}
	return nil, nil
}

// resolve classifies one record against the inventory: New when nothing
// matched, Update with its pending changes, or Unchanged when the matched
// artwork needs no write.
func (s *ImportService) resolve(ctx context.Context, rec *ParsedRecord) (MatchOutcome, error) {
	existing, err := s.match(ctx, rec)
	if err != nil {
		return MatchOutcome{}, err
	}
	if existing == nil {
		return MatchOutcome{Kind: MatchNew}, nil
	}
	changes := diffFields(existing, rec)
	if len(changes) == 0 {
		return MatchOutcome{Kind: MatchUnchanged, Existing: existing}, nil
	}
	return MatchOutcome{Kind: MatchUpdate, Existing: existing, Changes: changes}, nil
}

// recordUID builds the session-scoped correlation key used by the selection
// layer to track a candidate across the preview/execute boundary. It is
// never persisted and not stable across sessions.
func recordUID(rec *ParsedRecord, index int) string {
	if rec.SourceURL != "" {
		return rec.SourceURL
	}
	return fmt.Sprintf("%s::%d", rec.TitleEN, index)
}
