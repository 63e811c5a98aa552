package merkle

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
)

// Digest is the output of a hashing.Hasher. All tree nodes are digests.
type Digest []byte

// Equal reports whether two digests hold the same bytes.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d, other)
}

// Clone returns a copy that does not share memory with d.
func (d Digest) Clone() Digest {
	if d == nil {
		return nil
	}
	out := make(Digest, len(d))
	copy(out, d)
	return out
}

// Hex returns the 0x-prefixed hex encoding of the digest.
func (d Digest) Hex() string {
	return hexutil.Encode(d)
}

func (d Digest) String() string {
	return d.Hex()
}

// Level is one horizontal layer of the tree. Level 0 holds the leaf digests.
type Level []Digest

// Side tells the verifier on which side of the running hash a sibling is concatenated.
// The zero value is not a valid side.
type Side uint8

const (
	SideLeft Side = iota + 1
	SideRight
)

// Valid reports whether s is SideLeft or SideRight.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// ProofStep is one sibling on the path from a leaf to the root.
type ProofStep struct {
	// Sibling is the digest paired with the running hash at this level
	Sibling Digest `json:"sibling" msgpack:"sibling"`

	// Side is LEFT when Sibling precedes the running hash, RIGHT when it follows it
	Side Side `json:"side" msgpack:"side"`
}

// Proof is an inclusion proof ordered from the leaf level up to, but not including, the root.
// It is a plain value and holds no reference to the tree it was generated from.
type Proof []ProofStep

// Clone returns a deep copy of the proof.
func (p Proof) Clone() Proof {
	if p == nil {
		return nil
	}
	out := make(Proof, len(p))
	for i, step := range p {
		out[i] = ProofStep{Sibling: step.Sibling.Clone(), Side: step.Side}
	}
	return out
}

// MerkleTree is an immutable binary merkle tree.
// The last node of an odd-length level is paired with itself.
type MerkleTree struct {
	hasher hashing.Hasher

	// levels[0] = leaf digests, levels[len-1] = [root]
	levels []Level
}
