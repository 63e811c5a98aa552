package merkle

import (
	"fmt"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
)

// MaxLeaves bounds the memory a single tree may use.
const MaxLeaves = 1 << 24

// NewMerkleTree builds a binary merkle tree from leaves, preserving their order.
//
// Each leaf is hashed with hasher to form level 0. Every following level pairs
// adjacent nodes as H(left || right); if a level has an odd number of nodes, the
// last node is duplicated and paired with itself. A single leaf tree has its leaf
// digest as root.
func NewMerkleTree(leaves [][]byte, hasher hashing.Hasher) (*MerkleTree, error) {
	if hasher == nil {
		return nil, ErrNilHasher
	}
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}
	if len(leaves) > MaxLeaves {
		return nil, fmt.Errorf("%w: %d leaves exceeds maximum of %d", ErrTooManyLeaves, len(leaves), MaxLeaves)
	}

	// Hash all leaves
	leafLevel := make(Level, len(leaves))
	for i, leaf := range leaves {
		leafLevel[i] = hasher.Hash(leaf)
	}

	levels := make([]Level, 0, height(len(leaves))+1)
	levels = append(levels, leafLevel)

	currentLevel := leafLevel
	for len(currentLevel) > 1 {
		nextLevel := make(Level, 0, (len(currentLevel)+1)/2)

		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]
			right := left
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}
			nextLevel = append(nextLevel, Digest(hasher.Hash(left, right)))
		}

		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		hasher: hasher,
		levels: levels,
	}, nil
}

// Root returns the root digest.
func (mt *MerkleTree) Root() Digest {
	return mt.levels[len(mt.levels)-1][0].Clone()
}

// LeafCount returns the number of leaves the tree was built from.
func (mt *MerkleTree) LeafCount() int {
	return len(mt.levels[0])
}

// Height returns the number of levels above the leaf level, which is also the length of every proof.
func (mt *MerkleTree) Height() int {
	return len(mt.levels) - 1
}

// HashType returns the hash algorithm the tree was built with.
func (mt *MerkleTree) HashType() hashing.HashType {
	return mt.hasher.Type()
}

// LeafDigest returns the digest stored for the leaf at index.
func (mt *MerkleTree) LeafDigest(index int) (Digest, error) {
	if index < 0 || index >= mt.LeafCount() {
		return nil, fmt.Errorf("%w: index %d (tree has %d leaves)", ErrLeafIndexOutOfRange, index, mt.LeafCount())
	}
	return mt.levels[0][index].Clone(), nil
}

// Level returns a copy of the level at depth, 0 being the leaf level.
func (mt *MerkleTree) Level(depth int) (Level, error) {
	if depth < 0 || depth >= len(mt.levels) {
		return nil, fmt.Errorf("level %d out of range (tree has %d levels)", depth, len(mt.levels))
	}
	src := mt.levels[depth]
	out := make(Level, len(src))
	for i, d := range src {
		out[i] = d.Clone()
	}
	return out, nil
}

// IndexOf returns the lowest index whose leaf digest equals H(value).
func (mt *MerkleTree) IndexOf(value []byte) (int, error) {
	target := Digest(mt.hasher.Hash(value))
	for i, leaf := range mt.levels[0] {
		if leaf.Equal(target) {
			return i, nil
		}
	}
	return -1, ErrLeafNotFound
}

// GenerateProof creates an inclusion proof for the leaf at leafIndex.
// The proof holds copies of the sibling digests along the path from leaf to root.
func (mt *MerkleTree) GenerateProof(leafIndex int) (Proof, error) {
	if leafIndex < 0 || leafIndex >= mt.LeafCount() {
		return nil, fmt.Errorf("%w: index %d (tree has %d leaves)", ErrLeafIndexOutOfRange, leafIndex, mt.LeafCount())
	}

	proof := make(Proof, 0, mt.Height())
	index := leafIndex

	// Traverse from leaf to root, collecting sibling hashes
	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		siblingIndex := index ^ 1
		side := SideRight
		if siblingIndex < index {
			side = SideLeft
		}

		// The last node of an odd level is paired with itself
		if siblingIndex >= len(currentLevel) {
			siblingIndex = index
		}

		proof = append(proof, ProofStep{
			Sibling: currentLevel[siblingIndex].Clone(),
			Side:    side,
		})

		index = index / 2
	}

	return proof, nil
}

// GenerateProofForLeaf locates value among the leaves and returns its index and proof.
// With duplicate leaves the lowest matching index is used.
func (mt *MerkleTree) GenerateProofForLeaf(value []byte) (int, Proof, error) {
	index, err := mt.IndexOf(value)
	if err != nil {
		return -1, nil, err
	}
	proof, err := mt.GenerateProof(index)
	if err != nil {
		return -1, nil, err
	}
	return index, proof, nil
}

// height returns ceil(log2(n)) for n >= 1.
func height(n int) int {
	h := 0
	for size := 1; size < n; size <<= 1 {
		h++
	}
	return h
}
