package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence/persistencetest"
)

func TestMemoryPersistence(t *testing.T) {
	persistencetest.RunSuite(t, func(t *testing.T) persistence.IReportPersistence {
		return NewMemoryPersistence()
	})
}

func TestMemoryPersistence_DeepCopyOnSave(t *testing.T) {
	mp := NewMemoryPersistence()
	defer func() { _ = mp.Close() }()

	r := persistencetest.NewReport(t, 1, "a", "b", "c")
	root := r.RootHex()
	require.NoError(t, mp.SaveReport(r))

	// Mutating the caller's report must not affect the stored copy
	r.Leaves[0].Value = "mutated"
	r.Leaves[0].Proof[0].Sibling[0] ^= 0xFF

	loaded, err := mp.LoadReport(root)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "a", loaded.Leaves[0].Value)
	require.NoError(t, loaded.Verify())
}

func TestMemoryPersistence_DeepCopyOnLoad(t *testing.T) {
	mp := NewMemoryPersistence()
	defer func() { _ = mp.Close() }()

	r := persistencetest.NewReport(t, 1, "a", "b")
	require.NoError(t, mp.SaveReport(r))

	first, err := mp.LoadReport(r.RootHex())
	require.NoError(t, err)
	first.Root[0] ^= 0xFF

	second, err := mp.LoadReport(r.RootHex())
	require.NoError(t, err)
	assert.Equal(t, r.Root, second.Root)
}
