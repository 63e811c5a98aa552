// Package report turns a merkle tree into a self-contained report carrying the root and,
// for every leaf, its digest and inclusion proof. Reports are plain values that can be
// written, stored and verified without the tree.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

// Report holds everything needed to verify each leaf against the root.
type Report struct {
	ID           string            `json:"id" msgpack:"id"`
	HashType     hashing.HashType  `json:"hashType" msgpack:"hashType"`
	LeafEncoding util.LeafEncoding `json:"leafEncoding" msgpack:"leafEncoding"`
	Root         merkle.Digest     `json:"root" msgpack:"root"`
	Leaves       []*LeafEntry      `json:"leaves" msgpack:"leaves"`
	CreatedAt    int64             `json:"createdAt" msgpack:"createdAt"`
}

// LeafEntry is one leaf with its digest and proof.
type LeafEntry struct {
	Index  int           `json:"index" msgpack:"index"`
	Value  string        `json:"value" msgpack:"value"`
	Digest merkle.Digest `json:"digest" msgpack:"digest"`
	Proof  merkle.Proof  `json:"proof" msgpack:"proof"`
}

// Build creates the tree for values and a report with a proof for every index in order.
func Build(values []string, encoding util.LeafEncoding, hasher hashing.Hasher) (*Report, *merkle.MerkleTree, error) {
	leaves, err := util.EncodeLeaves(values, encoding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode leaves: %w", err)
	}

	tree, err := merkle.NewMerkleTree(leaves, hasher)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}

	r, err := FromTree(tree, values)
	if err != nil {
		return nil, nil, err
	}
	if encoding == "" {
		encoding = util.LeafEncodingRaw
	}
	r.LeafEncoding = encoding

	return r, tree, nil
}

// FromTree creates a report for an existing tree. values are the literal leaf values
// the tree was built from, in the same order.
func FromTree(tree *merkle.MerkleTree, values []string) (*Report, error) {
	if tree == nil {
		return nil, fmt.Errorf("cannot create report from nil tree")
	}
	if len(values) != tree.LeafCount() {
		return nil, fmt.Errorf("got %d leaf values for a tree with %d leaves", len(values), tree.LeafCount())
	}

	entries := make([]*LeafEntry, tree.LeafCount())
	for i := range entries {
		digest, err := tree.LeafDigest(i)
		if err != nil {
			return nil, err
		}
		proof, err := tree.GenerateProof(i)
		if err != nil {
			return nil, fmt.Errorf("failed to generate proof for leaf %d: %w", i, err)
		}
		entries[i] = &LeafEntry{
			Index:  i,
			Value:  values[i],
			Digest: digest,
			Proof:  proof,
		}
	}

	return &Report{
		ID:           uuid.New().String(),
		HashType:     tree.HashType(),
		LeafEncoding: util.LeafEncodingRaw,
		Root:         tree.Root(),
		Leaves:       entries,
		CreatedAt:    time.Now().Unix(),
	}, nil
}

// RootHex is the key reports are stored under.
func (r *Report) RootHex() string {
	return r.Root.Hex()
}

// Entry returns the leaf entry at index.
func (r *Report) Entry(index int) (*LeafEntry, error) {
	if index < 0 || index >= len(r.Leaves) {
		return nil, fmt.Errorf("%w: index %d (report has %d leaves)", merkle.ErrLeafIndexOutOfRange, index, len(r.Leaves))
	}
	return r.Leaves[index], nil
}

// FindEntry returns the entry with the lowest index whose digest equals the digest of
// value under the report's leaf encoding and hash, so "0xAB" and "0xab" find the same
// hex leaf.
func (r *Report) FindEntry(value string) (*LeafEntry, error) {
	hasher, err := r.Hasher()
	if err != nil {
		return nil, err
	}
	leaf, err := util.EncodeLeaf(value, r.LeafEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to encode leaf %q: %w", value, err)
	}
	digest := merkle.Digest(hasher.Hash(leaf))
	for _, e := range r.Leaves {
		if e.Digest.Equal(digest) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", merkle.ErrLeafNotFound, value)
}

// Hasher returns the hasher named by the report.
func (r *Report) Hasher() (hashing.Hasher, error) {
	return hashing.NewHasher(r.HashType)
}

// VerifyEntry re-encodes the entry value and verifies it against the report root.
// The stored digest must match the recomputed leaf digest.
func (r *Report) VerifyEntry(e *LeafEntry) error {
	hasher, err := r.Hasher()
	if err != nil {
		return err
	}
	leaf, err := util.EncodeLeaf(e.Value, r.LeafEncoding)
	if err != nil {
		return fmt.Errorf("leaf %d: %w", e.Index, err)
	}
	if digest := merkle.Digest(hasher.Hash(leaf)); !digest.Equal(e.Digest) {
		return &merkle.VerificationFailure{Expected: e.Digest, Computed: digest}
	}
	return merkle.Verify(hasher, leaf, e.Proof, r.Root)
}

// Verify checks every entry in the report.
func (r *Report) Verify() error {
	if len(r.Leaves) == 0 {
		return merkle.ErrEmptyInput
	}
	for _, e := range r.Leaves {
		if err := r.VerifyEntry(e); err != nil {
			return fmt.Errorf("leaf %d: %w", e.Index, err)
		}
	}
	return nil
}
