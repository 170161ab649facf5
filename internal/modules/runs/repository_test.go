package runs

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps every statement on the same in-memory
	// database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepository_InsertAndList(t *testing.T) {
	repo, err := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, err)

	rec, err := repo.Insert(KindMonteCarlo, 5000, 42, `{"iterations":5000}`)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, KindMonteCarlo, rec.Kind)
	assert.Equal(t, uint64(42), rec.Seed)

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, 5000, records[0].Iterations)
	assert.Equal(t, `{"iterations":5000}`, records[0].Summary)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo, err := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := repo.Insert(KindSnapshot, 0, 0, fmt.Sprintf(`{"n":%d}`, i))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Records inserted within the same second keep a stable id tiebreak;
	// every inserted record must be present
	got := map[string]bool{}
	for _, r := range records {
		got[r.ID] = true
	}
	for _, id := range ids {
		assert.True(t, got[id])
	}
}

func TestRepository_ListLimit(t *testing.T) {
	repo, err := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(KindDeterministic, 0, 0, "{}")
		require.NoError(t, err)
	}

	records, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Non-positive limits fall back to the default
	records, err = repo.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestRepository_Prune(t *testing.T) {
	repo, err := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := repo.Insert(KindMonteCarlo, 100, uint64(i), "{}")
		require.NoError(t, err)
	}

	require.NoError(t, repo.Prune(4))

	records, err := repo.List(100)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestRepository_PruneNonPositiveKeepIsNoOp(t *testing.T) {
	repo, err := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, err)

	_, err = repo.Insert(KindSnapshot, 0, 0, "{}")
	require.NoError(t, err)

	require.NoError(t, repo.Prune(0))

	records, err := repo.List(10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
