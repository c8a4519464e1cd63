package services

import (
	"context"

	"artsync/models"
)

// ParsedRecord is one artwork candidate as produced by the external document
// parser. It is treated as well-typed but untrusted input; an empty string
// means the parser had no value for that field.
type ParsedRecord struct {
	TitleEN      string   `json:"title_en"`
	TitleCN      string   `json:"title_cn,omitempty"`
	Year         string   `json:"year,omitempty"`
	Type         string   `json:"type,omitempty"`
	Dimensions   string   `json:"dimensions,omitempty"`
	Materials    string   `json:"materials,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Images       []string `json:"images,omitempty"`
}

// FieldChange describes one field-level difference an apply would make.
// NewValue is always non-empty; absent incoming values never produce a change.
type FieldChange struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// MatchKind enumerates the possible outcomes of resolving one parsed record
// against the inventory.
type MatchKind int

const (
	MatchNew MatchKind = iota
	MatchUpdate
	MatchUnchanged
)

// MatchOutcome is the resolved outcome for one parsed record. Existing and
// Changes are only set for MatchUpdate; Existing is also set for
// MatchUnchanged.
type MatchOutcome struct {
	Kind     MatchKind
	Existing *models.Artwork
	Changes  []FieldChange
}

// NewCandidate is a record the preview resolved as not yet in the inventory.
type NewCandidate struct {
	UID               string       `json:"uid"`
	Record            ParsedRecord `json:"record"`
	RequiresThumbnail bool         `json:"requires_thumbnail"`
	Images            []string     `json:"images,omitempty"`
}

// UpdateCandidate is a record that matched an existing artwork with at least
// one pending field change.
type UpdateCandidate struct {
	UID        string         `json:"uid"`
	ExistingID uint           `json:"existing_id"`
	Existing   models.Artwork `json:"existing"`
	Record     ParsedRecord   `json:"record"`
	Changes    []FieldChange  `json:"changes"`
}

// UnchangedRef points at an artwork the import would leave untouched.
type UnchangedRef struct {
	UID        string `json:"uid"`
	ExistingID uint   `json:"existing_id"`
	TitleEN    string `json:"title_en"`
}

// PreviewResult is the read-only answer of the preview phase, partitioned
// for operator review.
type PreviewResult struct {
	New       []NewCandidate    `json:"new"`
	Updates   []UpdateCandidate `json:"updates"`
	Unchanged []UnchangedRef    `json:"unchanged"`
}

// ExecuteResult accumulates the outcome of one executed batch (or, merged,
// of a whole run). Every submitted record lands in exactly one bucket.
type ExecuteResult struct {
	Created []uint   `json:"created"`
	Updated []uint   `json:"updated"`
	Errors  []string `json:"errors"`
}

// Merge folds another batch result into the accumulator.
func (r *ExecuteResult) Merge(other *ExecuteResult) {
	r.Created = append(r.Created, other.Created...)
	r.Updated = append(r.Updated, other.Updated...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Gateway is the persistence boundary of the pipeline. All calls are point
// operations; error semantics of the underlying store are opaque and must be
// handled per record by the caller.
type Gateway interface {
	// FindBySourceURL returns the artwork with an exactly equal source URL,
	// or nil if there is none.
	FindBySourceURL(ctx context.Context, url string) (*models.Artwork, error)
	// FindByTitle returns all artworks whose english title is exactly equal.
	FindByTitle(ctx context.Context, titleEN string) ([]models.Artwork, error)
	Insert(ctx context.Context, art *models.Artwork) (uint, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	// Thumbnail returns the currently stored thumbnail URL, "" if none.
	Thumbnail(ctx context.Context, id uint) (string, error)
}

// RunStore persists import run accounting rows.
type RunStore interface {
	Create(ctx context.Context, run *models.ImportRun) error
	Update(ctx context.Context, id string, fields map[string]any) error
}
