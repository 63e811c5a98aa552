// Package persistencetest holds the behaviour every IReportPersistence backend must share.
package persistencetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

// Factory returns a fresh, empty backend.
type Factory func(t *testing.T) persistence.IReportPersistence

// NewReport builds a report over values with the given creation time.
func NewReport(t *testing.T, createdAt int64, values ...string) *report.Report {
	t.Helper()
	r, _, err := report.Build(values, util.LeafEncodingRaw, hashing.NewKeccak256Hasher())
	require.NoError(t, err)
	r.CreatedAt = createdAt
	return r
}

// RunSuite runs the shared backend tests.
func RunSuite(t *testing.T, newStore Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		r := NewReport(t, 100, "a", "b", "c")
		require.NoError(t, store.SaveReport(r))

		loaded, err := store.LoadReport(r.RootHex())
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, r.ID, loaded.ID)
		assert.Equal(t, r.Root, loaded.Root)
		assert.Equal(t, r.HashType, loaded.HashType)
		assert.Equal(t, r.CreatedAt, loaded.CreatedAt)
		require.Len(t, loaded.Leaves, 3)
		require.NoError(t, loaded.Verify())
	})

	t.Run("LoadNormalizesRoot", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		r := NewReport(t, 100, "x", "y")
		require.NoError(t, store.SaveReport(r))

		hexNoPrefix := r.RootHex()[2:]
		loaded, err := store.LoadReport(hexNoPrefix)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, r.ID, loaded.ID)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadReport("0xdeadbeef")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("LoadInvalidRoot", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		_, err := store.LoadReport("not-a-root")
		require.Error(t, err)
	})

	t.Run("SaveNil", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		err := store.SaveReport(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil Report")
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		first := NewReport(t, 100, "a", "b")
		second := NewReport(t, 200, "a", "b")
		require.Equal(t, first.Root, second.Root)

		require.NoError(t, store.SaveReport(first))
		require.NoError(t, store.SaveReport(second))

		loaded, err := store.LoadReport(first.RootHex())
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, second.ID, loaded.ID)

		summaries, err := store.ListReports()
		require.NoError(t, err)
		assert.Len(t, summaries, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		r := NewReport(t, 100, "a")
		require.NoError(t, store.SaveReport(r))
		require.NoError(t, store.DeleteReport(r.RootHex()))

		loaded, err := store.LoadReport(r.RootHex())
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// Idempotent
		require.NoError(t, store.DeleteReport(r.RootHex()))
	})

	t.Run("ListSortedByCreation", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		createdAt := []int64{300, 100, 200}
		for i, ts := range createdAt {
			r := NewReport(t, ts, fmt.Sprintf("leaf-%d", i), "shared")
			require.NoError(t, store.SaveReport(r))
		}

		summaries, err := store.ListReports()
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, int64(100), summaries[0].CreatedAt)
		assert.Equal(t, int64(200), summaries[1].CreatedAt)
		assert.Equal(t, int64(300), summaries[2].CreatedAt)
		for _, s := range summaries {
			assert.Equal(t, 2, s.LeafCount)
			assert.Equal(t, hashing.HashTypeKeccak256, s.HashType)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		summaries, err := store.ListReports()
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("Close", func(t *testing.T) {
		store := newStore(t)
		r := NewReport(t, 100, "a")

		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		// Idempotent
		require.NoError(t, store.Close())

		require.ErrorIs(t, store.SaveReport(r), persistence.ErrClosed)
		_, err := store.LoadReport(r.RootHex())
		require.ErrorIs(t, err, persistence.ErrClosed)
		_, err = store.ListReports()
		require.ErrorIs(t, err, persistence.ErrClosed)
		require.ErrorIs(t, store.DeleteReport(r.RootHex()), persistence.ErrClosed)
		require.ErrorIs(t, store.HealthCheck(), persistence.ErrClosed)
	})

	t.Run("ThreadSafety", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		const numGoroutines = 8
		reports := make([]*report.Report, numGoroutines)
		for i := range reports {
			reports[i] = NewReport(t, int64(i+1), fmt.Sprintf("worker-%d", i), "x", "y")
		}

		var wg sync.WaitGroup
		errs := make(chan error, numGoroutines*3)
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(r *report.Report) {
				defer wg.Done()
				if err := store.SaveReport(r); err != nil {
					errs <- err
					return
				}
				loaded, err := store.LoadReport(r.RootHex())
				if err != nil {
					errs <- err
					return
				}
				if loaded == nil {
					errs <- fmt.Errorf("report %s not found after save", r.RootHex())
					return
				}
				if _, err := store.ListReports(); err != nil {
					errs <- err
				}
			}(reports[i])
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		summaries, err := store.ListReports()
		require.NoError(t, err)
		assert.Len(t, summaries, numGoroutines)
	})
}
