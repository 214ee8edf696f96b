package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletedItem(t *testing.T) {
	wf, item := newTestItem(t)

	sew, _ := wf.StageByID("sew")
	qc, _ := wf.StageByID("qc")
	require.NoError(t, item.AdvanceTo(sew, "worker-1", ""))
	require.NoError(t, item.AdvanceTo(qc, "worker-1", ""))
	require.NoError(t, item.ApplyException(ExceptionKindDefective, "inspector", "loose seam"))
	require.NoError(t, item.Complete("Quality Control", "worker-1", "done"))

	completed := NewCompletedItem(item, "Quality Control")

	assert.Equal(t, item.ItemID, completed.ItemID)
	assert.Equal(t, item.WorkflowID, completed.WorkflowID)
	assert.Equal(t, "qc", completed.FinalStageID)
	assert.Equal(t, "Quality Control", completed.FinalStage)
	assert.True(t, completed.IsDefective)
	assert.False(t, completed.IsFlagged)
	assert.Equal(t, "worker-1", completed.AssignedTo)
	assert.Equal(t, "navy", completed.Metadata["color"])
	assert.Equal(t, item.StartedAt, completed.StartedAt)
	require.NotNil(t, item.CompletedAt)
	assert.Equal(t, *item.CompletedAt, completed.CompletedAt)
	assert.False(t, completed.ArchivedAt.IsZero())
}

func TestNewCompletedItem_FallbackCompletedAt(t *testing.T) {
	_, item := newTestItem(t)

	// Item never went through Complete; the archival record still
	// needs a completion timestamp.
	completed := NewCompletedItem(item, "Cutting")

	assert.False(t, completed.CompletedAt.IsZero())
	assert.Equal(t, "cut", completed.FinalStageID)
}

func TestArchiveHistory(t *testing.T) {
	wf, item := newTestItem(t)

	sew, _ := wf.StageByID("sew")
	require.NoError(t, item.AdvanceTo(sew, "worker-1", "note"))
	require.NoError(t, item.Pause("supervisor", "machine jam"))
	require.NoError(t, item.Resume("supervisor"))

	entries := item.PendingHistory()
	require.Len(t, entries, 4)

	archived := ArchiveHistory(entries)
	require.Len(t, archived, 4)

	for i, a := range archived {
		assert.Equal(t, entries[i].EntryID, a.EntryID)
		assert.Equal(t, entries[i].ItemID, a.ItemID)
		assert.Equal(t, entries[i].StageID, a.StageID)
		assert.Equal(t, entries[i].Action, a.Action)
		assert.Equal(t, entries[i].Actor, a.Actor)
		assert.Equal(t, entries[i].Notes, a.Notes)
		assert.Equal(t, entries[i].Sequence, a.Sequence)
		assert.Equal(t, entries[i].Timestamp, a.Timestamp)
	}

	assert.Equal(t, ActionStarted, archived[0].Action)
	assert.Equal(t, ActionResumed, archived[3].Action)
}

func TestArchiveHistory_Empty(t *testing.T) {
	archived := ArchiveHistory(nil)
	assert.NotNil(t, archived)
	assert.Empty(t, archived)
}
