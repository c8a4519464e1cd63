package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artsync/models"
)

func TestStartRunCreatesAccountingRow(t *testing.T) {
	svc, _, runs := setupService(t)

	run, err := svc.StartRun(context.Background(), 65)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Equal(t, 65, run.ItemsTotal)
	assert.Equal(t, 3, run.BatchesTotal)
	assert.NotNil(t, run.StartedAt)
	require.Len(t, runs.created, 1)
	assert.Equal(t, run, runs.created[0])
}

func TestRunImportPersistsProgressAndFinalState(t *testing.T) {
	svc, gw, runs := setupService(t)
	gw.add(models.Artwork{TitleEN: "Piece 0", Year: "2000"})

	run, err := svc.StartRun(context.Background(), 2)
	require.NoError(t, err)

	acc := svc.RunImport(context.Background(), run.ID, []ParsedRecord{
		{TitleEN: "Piece 0", Year: "2024"},
		{TitleEN: "Brand New"},
	})

	assert.Len(t, acc.Created, 1)
	assert.Len(t, acc.Updated, 1)
	assert.Empty(t, acc.Errors)

	// One progress update for the single batch plus the final update.
	require.Len(t, runs.updates, 2)
	assert.Equal(t, 2, runs.updates[0]["items_processed"])
	assert.Equal(t, 1, runs.updates[0]["batches_done"])

	final := runs.updates[1]
	assert.Equal(t, models.RunStatusCompleted, final["status"])
	assert.Equal(t, 1, final["created_count"])
	assert.Equal(t, 1, final["updated_count"])
	assert.Equal(t, 0, final["error_count"])
}

func TestRunImportFailsRunWhenNothingApplied(t *testing.T) {
	svc, gw, runs := setupService(t)
	gw.failOn["Doomed"] = errSentinel("constraint violation")

	run, err := svc.StartRun(context.Background(), 1)
	require.NoError(t, err)

	acc := svc.RunImport(context.Background(), run.ID, []ParsedRecord{{TitleEN: "Doomed"}})

	require.Len(t, acc.Errors, 1)
	final := runs.updates[len(runs.updates)-1]
	assert.Equal(t, models.RunStatusFailed, final["status"])

	var persisted []string
	require.NoError(t, json.Unmarshal(final["errors"].([]byte), &persisted))
	assert.Equal(t, acc.Errors, persisted)
}
