package services

import (
	"artsync/models"
)

// fieldSpec binds one allow-listed website field to its column name, its
// human-readable label and its accessors on both sides of the diff.
type fieldSpec struct {
	name     string
	label    string
	incoming func(*ParsedRecord) string
	current  func(*models.Artwork) string
}

// websiteFields is the fixed allow-list of fields an import may write.
// Curator-owned fields (status, location, price, sale info, inventory
// number, notes) are structurally absent here and can never show up in a
// FieldChange or an update payload.
var websiteFields = []fieldSpec{
	{"title_en", "Title (EN)",
		func(r *ParsedRecord) string { return r.TitleEN },
		func(a *models.Artwork) string { return a.TitleEN }},
	{"title_cn", "Title (CN)",
		func(r *ParsedRecord) string { return r.TitleCN },
		func(a *models.Artwork) string { return a.TitleCN }},
	{"year", "Year",
		func(r *ParsedRecord) string { return r.Year },
		func(a *models.Artwork) string { return a.Year }},
	{"type", "Type",
		func(r *ParsedRecord) string { return r.Type },
		func(a *models.Artwork) string { return a.Type }},
	{"dimensions", "Dimensions",
		func(r *ParsedRecord) string { return r.Dimensions },
		func(a *models.Artwork) string { return a.Dimensions }},
	{"materials", "Materials",
		func(r *ParsedRecord) string { return r.Materials },
		func(a *models.Artwork) string { return a.Materials }},
	{"duration", "Duration",
		func(r *ParsedRecord) string { return r.Duration },
		func(a *models.Artwork) string { return a.Duration }},
}

// diffFields computes the minimal set of changes an apply would make.
// Absent incoming values are skipped: an import never overwrites existing
// data with an absence of data. The thumbnail is handled separately in the
// executor and never reported as a change.
func diffFields(existing *models.Artwork, incoming *ParsedRecord) []FieldChange {
	var changes []FieldChange
	for _, f := range websiteFields {
		next := f.incoming(incoming)
		if next == "" {
			continue
		}
		if prev := f.current(existing); next != prev {
			changes = append(changes, FieldChange{
				Field:    f.name,
				Label:    f.label,
				OldValue: prev,
				NewValue: next,
			})
		}
	}
	return changes
}
