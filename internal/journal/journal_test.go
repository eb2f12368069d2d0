package journal

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfsync/nfsync/internal/syncer"
)

func newTestJournal(t *testing.T) *Journal {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleResult(id string, start time.Time) syncer.Result {
	return syncer.Result{
		RunID:      id,
		Total:      3,
		Completed:  3,
		Succeeded:  2,
		Failed:     1,
		Success:    false,
		Message:    "2 folders synced, 1 failed",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Errors: []syncer.PairError{
			{Local: "/home/u/docs", Message: "rsync exited with code 23"},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	j := newTestJournal(t)
	start := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(sampleResult("run-1", start)))

	runs, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, "run-1", r.ID)
	assert.Equal(t, "2026-08-25T09:00:00Z", r.StartedAt)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	assert.False(t, r.Success)
	assert.Equal(t, "2 folders synced, 1 failed", r.Message)
}

func TestRecentNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		res := sampleResult(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		res.Errors = nil
		require.NoError(t, j.Record(res))
	}

	runs, err := j.Recent(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
	assert.Equal(t, "run-2", runs[2].ID)
}

func TestErrorsInProcessingOrder(t *testing.T) {
	j := newTestJournal(t)
	res := sampleResult("run-1", time.Now())
	res.Errors = []syncer.PairError{
		{Local: "/b", Message: "second failure"},
		{Local: "/a", Message: "first failure"},
	}
	require.NoError(t, j.Record(res))

	errs, err := j.Errors("run-1")
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "/b", errs[0].Local)
	assert.Equal(t, "/a", errs[1].Local)
}

func TestErrorsUnknownRunEmpty(t *testing.T) {
	j := newTestJournal(t)

	errs, err := j.Errors("missing")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	j := newTestJournal(t)
	res := sampleResult("run-1", time.Now())

	require.NoError(t, j.Record(res))
	assert.Error(t, j.Record(res))
}
