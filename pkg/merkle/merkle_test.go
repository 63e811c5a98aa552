package merkle

import (
	"crypto/rand"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
)

// createTestLeaves creates n distinct leaves
func createTestLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := 0; i < n; i++ {
		leaves[i] = []byte(fmt.Sprintf("leaf-%d", i))
	}
	return leaves
}

// randomLeaves creates n random 32-byte leaves
func randomLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = make([]byte, 32)
		_, _ = rand.Read(leaves[i]) // Ignore error in test helper
	}
	return leaves
}

func ceilLog2(n int) int {
	h := 0
	for (1 << h) < n {
		h++
	}
	return h
}

// TestNewMerkleTree tests tree construction and proof round-trips for various leaf counts
func TestNewMerkleTree(t *testing.T) {
	testCases := []struct {
		name      string
		numLeaves int
	}{
		{"Single leaf", 1},
		{"Two leaves", 2},
		{"Three leaves", 3},
		{"Four leaves (power of 2)", 4},
		{"Five leaves", 5},
		{"Seven leaves", 7},
		{"Eight leaves (power of 2)", 8},
		{"Fifteen leaves", 15},
		{"Sixteen leaves (power of 2)", 16},
		{"Seventeen leaves", 17},
		{"Hundred leaves", 100},
	}

	for _, ht := range hashing.SupportedHashTypes() {
		hasher, err := hashing.NewHasher(ht)
		require.NoError(t, err)

		for _, tc := range testCases {
			t.Run(fmt.Sprintf("%s/%s", ht, tc.name), func(t *testing.T) {
				leaves := createTestLeaves(tc.numLeaves)
				tree, err := NewMerkleTree(leaves, hasher)
				require.NoError(t, err)
				require.NotNil(t, tree)

				require.Equal(t, tc.numLeaves, tree.LeafCount())
				require.Equal(t, ceilLog2(tc.numLeaves), tree.Height())
				require.Len(t, tree.Root(), hasher.Size())
				require.Equal(t, ht, tree.HashType())

				// Every level halves, rounding up
				for depth := 0; depth < tree.Height(); depth++ {
					below, err := tree.Level(depth)
					require.NoError(t, err)
					above, err := tree.Level(depth + 1)
					require.NoError(t, err)
					require.Equal(t, (len(below)+1)/2, len(above))
				}
				top, err := tree.Level(tree.Height())
				require.NoError(t, err)
				require.Len(t, top, 1)
				require.Equal(t, tree.Root(), top[0])

				for i := 0; i < tc.numLeaves; i++ {
					proof, err := tree.GenerateProof(i)
					require.NoError(t, err)
					require.Len(t, proof, ceilLog2(tc.numLeaves), "proof length for leaf %d", i)

					require.True(t, VerifyProof(hasher, leaves[i], proof, tree.Root()), "Proof for leaf %d should be valid", i)
					require.NoError(t, Verify(hasher, leaves[i], proof, tree.Root()))
				}
			})
		}
	}
}

// TestNewMerkleTreeEmpty tests that building a tree from no leaves fails
func TestNewMerkleTreeEmpty(t *testing.T) {
	tree, err := NewMerkleTree([][]byte{}, hashing.NewKeccak256Hasher())
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Nil(t, tree)
	require.Contains(t, err.Error(), "empty")

	tree, err = NewMerkleTree(nil, hashing.NewKeccak256Hasher())
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Nil(t, tree)
}

func TestNewMerkleTreeNilHasher(t *testing.T) {
	tree, err := NewMerkleTree(createTestLeaves(2), nil)
	require.ErrorIs(t, err, ErrNilHasher)
	require.Nil(t, tree)
}

func TestSingleLeafIdentity(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	tree, err := NewMerkleTree([][]byte{[]byte("only")}, hasher)
	require.NoError(t, err)

	require.Equal(t, Digest(hasher.Hash([]byte("only"))), tree.Root())
	require.Equal(t, 0, tree.Height())

	proof, err := tree.GenerateProof(0)
	require.NoError(t, err)
	require.Empty(t, proof)
	require.True(t, VerifyProof(hasher, []byte("only"), proof, tree.Root()))
}

// TestOddCountDuplication checks the exact level values for ["a","b","c"]
func TestOddCountDuplication(t *testing.T) {
	h := hashing.NewKeccak256Hasher()
	tree, err := NewMerkleTree([][]byte{[]byte("a"), []byte("b"), []byte("c")}, h)
	require.NoError(t, err)

	ha := h.Hash([]byte("a"))
	hb := h.Hash([]byte("b"))
	hc := h.Hash([]byte("c"))
	left := h.Hash(ha, hb)
	right := h.Hash(hc, hc)
	root := h.Hash(left, right)

	level0, err := tree.Level(0)
	require.NoError(t, err)
	require.Equal(t, Level{ha, hb, hc}, level0)

	level1, err := tree.Level(1)
	require.NoError(t, err)
	require.Equal(t, Level{left, right}, level1)

	require.Equal(t, Digest(root), tree.Root())

	// The boundary leaf is paired with itself
	proof, err := tree.GenerateProof(2)
	require.NoError(t, err)
	require.Equal(t, Proof{
		{Sibling: hc, Side: SideRight},
		{Sibling: left, Side: SideLeft},
	}, proof)

	proof, err = tree.GenerateProof(1)
	require.NoError(t, err)
	require.Equal(t, Proof{
		{Sibling: ha, Side: SideLeft},
		{Sibling: right, Side: SideRight},
	}, proof)
}

// TestMerkleProofVerification tests proof verification with valid and invalid cases
func TestMerkleProofVerification(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves := createTestLeaves(4)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)

	t.Run("Valid proof", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)
		require.True(t, VerifyProof(hasher, leaves[0], proof, tree.Root()))
	})

	t.Run("Invalid proof - wrong root", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		invalidRoot := make(Digest, 32)
		invalidRoot[0] = 1
		require.False(t, VerifyProof(hasher, leaves[0], proof, invalidRoot))

		err = Verify(hasher, leaves[0], proof, invalidRoot)
		var failure *VerificationFailure
		require.ErrorAs(t, err, &failure)
		require.ErrorIs(t, err, ErrVerificationFailed)
		require.Equal(t, invalidRoot, failure.Expected)
		require.Equal(t, tree.Root(), failure.Computed)
	})

	t.Run("Invalid proof - tampered leaf", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		tampered := append([]byte{}, leaves[0]...)
		tampered[0] ^= 0xFF
		require.False(t, VerifyProof(hasher, tampered, proof, tree.Root()))
		require.ErrorIs(t, Verify(hasher, tampered, proof, tree.Root()), ErrVerificationFailed)
	})

	t.Run("Invalid proof - tampered sibling", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		proof[0].Sibling[0] ^= 0xFF
		require.False(t, VerifyProof(hasher, leaves[0], proof, tree.Root()))
	})

	t.Run("Invalid proof - flipped side", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		proof[0].Side = SideLeft
		require.False(t, VerifyProof(hasher, leaves[0], proof, tree.Root()))
	})

	t.Run("Invalid proof - truncated", func(t *testing.T) {
		proof, err := tree.GenerateProof(0)
		require.NoError(t, err)

		require.ErrorIs(t, Verify(hasher, leaves[0], proof[:1], tree.Root()), ErrVerificationFailed)
	})

	t.Run("Wrong hasher", func(t *testing.T) {
		proof, err := tree.GenerateProof(3)
		require.NoError(t, err)
		require.False(t, VerifyProof(hashing.NewSha256Hasher(), leaves[3], proof, tree.Root()))
	})
}

func TestMalformedProof(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves := createTestLeaves(5)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func(p Proof) (Proof, Digest)
	}{
		{"zero side", func(p Proof) (Proof, Digest) {
			p[1].Side = 0
			return p, tree.Root()
		}},
		{"unknown side", func(p Proof) (Proof, Digest) {
			p[0].Side = Side(7)
			return p, tree.Root()
		}},
		{"empty sibling", func(p Proof) (Proof, Digest) {
			p[2].Sibling = Digest{}
			return p, tree.Root()
		}},
		{"short sibling", func(p Proof) (Proof, Digest) {
			p[0].Sibling = p[0].Sibling[:16]
			return p, tree.Root()
		}},
		{"short root", func(p Proof) (Proof, Digest) {
			return p, tree.Root()[:31]
		}},
		{"too deep", func(p Proof) (Proof, Digest) {
			deep := make(Proof, MaxProofDepth+1)
			for i := range deep {
				deep[i] = p[0]
			}
			return deep, tree.Root()
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			proof, err := tree.GenerateProof(4)
			require.NoError(t, err)

			proof, root := tc.mutate(proof)
			err = Verify(hasher, leaves[4], proof, root)

			var malformed *MalformedProofError
			require.ErrorAs(t, err, &malformed)
			require.ErrorIs(t, err, ErrMalformedProof)
			require.NotErrorIs(t, err, ErrVerificationFailed)
			require.False(t, VerifyProof(hasher, leaves[4], proof, root))
		})
	}
}

// TestGenerateProofInvalidIndex tests proof generation with invalid indices
func TestGenerateProofInvalidIndex(t *testing.T) {
	tree, err := NewMerkleTree(createTestLeaves(4), hashing.NewKeccak256Hasher())
	require.NoError(t, err)

	t.Run("Negative index", func(t *testing.T) {
		proof, err := tree.GenerateProof(-1)
		require.ErrorIs(t, err, ErrLeafIndexOutOfRange)
		require.Nil(t, proof)
	})

	t.Run("Index out of bounds", func(t *testing.T) {
		proof, err := tree.GenerateProof(10)
		require.ErrorIs(t, err, ErrLeafIndexOutOfRange)
		require.Nil(t, proof)
	})

	t.Run("Leaf digest out of bounds", func(t *testing.T) {
		_, err := tree.LeafDigest(4)
		require.ErrorIs(t, err, ErrLeafIndexOutOfRange)
	})
}

func TestGenerateProofForLeaf(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves := [][]byte{[]byte("x"), []byte("dup"), []byte("y"), []byte("dup"), []byte("z")}
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		index, proof, err := tree.GenerateProofForLeaf([]byte("y"))
		require.NoError(t, err)
		require.Equal(t, 2, index)

		expected, err := tree.GenerateProof(2)
		require.NoError(t, err)
		require.Equal(t, expected, proof)
		require.True(t, VerifyProof(hasher, []byte("y"), proof, tree.Root()))
	})

	t.Run("Duplicate resolves to lowest index", func(t *testing.T) {
		index, proof, err := tree.GenerateProofForLeaf([]byte("dup"))
		require.NoError(t, err)
		require.Equal(t, 1, index)

		expected, err := tree.GenerateProof(1)
		require.NoError(t, err)
		require.Equal(t, expected, proof)
	})

	t.Run("Not found", func(t *testing.T) {
		index, proof, err := tree.GenerateProofForLeaf([]byte("missing"))
		require.ErrorIs(t, err, ErrLeafNotFound)
		require.Equal(t, -1, index)
		require.Nil(t, proof)
	})
}

// TestTamperSensitivity flips every byte of every leaf and checks the root changes
func TestTamperSensitivity(t *testing.T) {
	hasher := hashing.NewSha256Hasher()
	leaves := createTestLeaves(7)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)
	root := tree.Root()

	for i := range leaves {
		for b := range leaves[i] {
			mutated := make([][]byte, len(leaves))
			for j := range leaves {
				mutated[j] = append([]byte{}, leaves[j]...)
			}
			mutated[i][b] ^= 0x01

			other, err := NewMerkleTree(mutated, hasher)
			require.NoError(t, err)
			require.NotEqual(t, root, other.Root(), "leaf %d byte %d", i, b)
		}
	}
}

// TestCrossTreeProofRejected checks that a proof from one tree fails against another tree's root
func TestCrossTreeProofRejected(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves1 := randomLeaves(6)
	leaves2 := randomLeaves(6)

	tree1, err := NewMerkleTree(leaves1, hasher)
	require.NoError(t, err)
	tree2, err := NewMerkleTree(leaves2, hasher)
	require.NoError(t, err)

	for i := range leaves1 {
		proof, err := tree1.GenerateProof(i)
		require.NoError(t, err)

		require.False(t, VerifyProof(hasher, leaves1[i], proof, tree2.Root()))
		require.ErrorIs(t, Verify(hasher, leaves1[i], proof, tree2.Root()), ErrVerificationFailed)
	}
}

// TestTreeImmutability checks that neither caller inputs nor returned values alias tree state
func TestTreeImmutability(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves := createTestLeaves(5)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)
	root := tree.Root()

	leaves[0][0] ^= 0xFF
	require.Equal(t, root, tree.Root())

	returned := tree.Root()
	returned[0] ^= 0xFF
	require.Equal(t, root, tree.Root())

	proof, err := tree.GenerateProof(1)
	require.NoError(t, err)
	proof[0].Sibling[0] ^= 0xFF
	fresh, err := tree.GenerateProof(1)
	require.NoError(t, err)
	require.NotEqual(t, proof[0].Sibling, fresh[0].Sibling)

	level, err := tree.Level(0)
	require.NoError(t, err)
	level[2][0] ^= 0xFF
	digest, err := tree.LeafDigest(2)
	require.NoError(t, err)
	require.NotEqual(t, level[2], digest)
}

func TestProofClone(t *testing.T) {
	tree, err := NewMerkleTree(createTestLeaves(4), hashing.NewKeccak256Hasher())
	require.NoError(t, err)

	proof, err := tree.GenerateProof(0)
	require.NoError(t, err)

	clone := proof.Clone()
	require.Equal(t, proof, clone)
	clone[0].Sibling[0] ^= 0xFF
	require.NotEqual(t, proof, clone)

	require.Nil(t, Proof(nil).Clone())
}

// TestConcurrentReaders checks that parallel readers of one tree agree
func TestConcurrentReaders(t *testing.T) {
	hasher := hashing.NewBlake2bHasher()
	leaves := createTestLeaves(33)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)
	root := tree.Root()

	var wg sync.WaitGroup
	errs := make(chan error, len(leaves))
	for i := range leaves {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			proof, err := tree.GenerateProof(i)
			if err != nil {
				errs <- err
				return
			}
			if err := Verify(hasher, leaves[i], proof, tree.Root()); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, root, tree.Root())
}

func TestComputeRoot(t *testing.T) {
	hasher := hashing.NewKeccak256Hasher()
	leaves := createTestLeaves(9)
	tree, err := NewMerkleTree(leaves, hasher)
	require.NoError(t, err)

	for i := range leaves {
		digest, err := tree.LeafDigest(i)
		require.NoError(t, err)
		proof, err := tree.GenerateProof(i)
		require.NoError(t, err)

		computed, err := ComputeRoot(hasher, digest, proof)
		require.NoError(t, err)
		require.Equal(t, tree.Root(), computed)
		require.NoError(t, VerifyLeafDigest(hasher, digest, proof, tree.Root()))
	}

	_, err = ComputeRoot(hasher, Digest{1, 2, 3}, nil)
	require.ErrorIs(t, err, ErrMalformedProof)

	_, err = ComputeRoot(nil, nil, nil)
	require.ErrorIs(t, err, ErrNilHasher)
}

func TestHeight(t *testing.T) {
	for n := 1; n <= 70; n++ {
		require.Equal(t, ceilLog2(n), height(n), "n=%d", n)
	}
}
