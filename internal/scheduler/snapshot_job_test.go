package scheduler

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthecon/preventsim/internal/modules/runs"

	_ "modernc.org/sqlite"
)

type mockRunner struct {
	payload    interface{}
	shouldFail bool
}

func (m *mockRunner) Snapshot() (interface{}, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("mock snapshot error")
	}
	return m.payload, nil
}

func setupTestRepo(t *testing.T) *runs.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := runs.NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func TestSnapshotJob_Run(t *testing.T) {
	repo := setupTestRepo(t)
	runner := &mockRunner{payload: map[string]float64{"net_benefit": 1234.5}}

	job := NewSnapshotJob(runner, repo, 10, zerolog.Nop())
	require.Equal(t, "deterministic_snapshot", job.Name())
	require.NoError(t, job.Run())

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, runs.KindSnapshot, records[0].Kind)
	assert.Contains(t, records[0].Summary, "net_benefit")
}

func TestSnapshotJob_RunnerFailure(t *testing.T) {
	repo := setupTestRepo(t)
	job := NewSnapshotJob(&mockRunner{shouldFail: true}, repo, 10, zerolog.Nop())

	assert.Error(t, job.Run())

	records, err := repo.List(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSnapshotJob_PrunesHistory(t *testing.T) {
	repo := setupTestRepo(t)
	runner := &mockRunner{payload: map[string]string{"status": "ok"}}

	job := NewSnapshotJob(runner, repo, 3, zerolog.Nop())
	for i := 0; i < 6; i++ {
		require.NoError(t, job.Run())
	}

	records, err := repo.List(100)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := NewSnapshotJob(&mockRunner{}, setupTestRepo(t), 1, zerolog.Nop())

	assert.Error(t, s.AddJob("not a schedule", job))
	assert.NoError(t, s.AddJob("0 3 * * *", job))
}
