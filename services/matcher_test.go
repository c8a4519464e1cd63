package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artsync/models"
)

func TestMatchSourceURLPrecedence(t *testing.T) {
	svc, gw, _ := setupService(t)

	byURL := gw.add(models.Artwork{TitleEN: "Completely Different Title", SourceURL: "https://example.com/a"})
	gw.add(models.Artwork{TitleEN: "Red Mountain"})

	// Title matches another artwork exactly, but the source URL hit wins.
	rec := &ParsedRecord{TitleEN: "Red Mountain", SourceURL: "https://example.com/a"}
	got, err := svc.match(context.Background(), rec)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, byURL, got.ID)
}

func TestMatchFallsBackToTitle(t *testing.T) {
	svc, gw, _ := setupService(t)
	id := gw.add(models.Artwork{TitleEN: "Red Mountain", SourceURL: "https://example.com/other"})

	// No source URL on the incoming record, single exact title hit.
	got, err := svc.match(context.Background(), &ParsedRecord{TitleEN: "Red Mountain"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	// Source URL present but unknown: falls through to the title lookup.
	got, err = svc.match(context.Background(), &ParsedRecord{TitleEN: "Red Mountain", SourceURL: "https://example.com/unknown"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestMatchAmbiguousTitleIsNew(t *testing.T) {
	svc, gw, _ := setupService(t)
	gw.add(models.Artwork{TitleEN: "Untitled"})
	gw.add(models.Artwork{TitleEN: "Untitled"})

	// Two artworks share the title and there is no source URL: never an
	// arbitrary pick.
	got, err := svc.match(context.Background(), &ParsedRecord{TitleEN: "Untitled"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatchNoHitIsNew(t *testing.T) {
	svc, _, _ := setupService(t)

	got, err := svc.match(context.Background(), &ParsedRecord{TitleEN: "Nothing Here"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordUID(t *testing.T) {
	tests := []struct {
		name  string
		rec   ParsedRecord
		index int
		want  string
	}{
		{"source url wins", ParsedRecord{TitleEN: "A", SourceURL: "u1"}, 0, "u1"},
		{"title plus index without url", ParsedRecord{TitleEN: "A"}, 1, "A::1"},
		{"empty title still unique per index", ParsedRecord{}, 3, "::3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordUID(&tt.rec, tt.index))
		})
	}
}
