package merkle

import (
	"fmt"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
)

// MaxProofDepth is the longest proof accepted by the verifier. It is well above
// the height of a tree holding MaxLeaves leaves.
const MaxProofDepth = 64

// ComputeRoot replays proof starting from leafDigest and returns the resulting root.
// It never needs a tree instance.
func ComputeRoot(hasher hashing.Hasher, leafDigest Digest, proof Proof) (Digest, error) {
	if hasher == nil {
		return nil, ErrNilHasher
	}
	if len(leafDigest) != hasher.Size() {
		return nil, &MalformedProofError{Step: -1, Reason: fmt.Sprintf("leaf digest has %d bytes, expected %d", len(leafDigest), hasher.Size())}
	}
	if len(proof) > MaxProofDepth {
		return nil, &MalformedProofError{Step: -1, Reason: fmt.Sprintf("proof has %d steps, maximum is %d", len(proof), MaxProofDepth)}
	}

	running := leafDigest
	for i, step := range proof {
		if len(step.Sibling) == 0 {
			return nil, &MalformedProofError{Step: i, Reason: "empty sibling digest"}
		}
		if len(step.Sibling) != hasher.Size() {
			return nil, &MalformedProofError{Step: i, Reason: fmt.Sprintf("sibling digest has %d bytes, expected %d", len(step.Sibling), hasher.Size())}
		}

		switch step.Side {
		case SideLeft:
			running = hasher.Hash(step.Sibling, running)
		case SideRight:
			running = hasher.Hash(running, step.Sibling)
		default:
			return nil, &MalformedProofError{Step: i, Reason: fmt.Sprintf("invalid side tag %d", step.Side)}
		}
	}

	return running.Clone(), nil
}

// Verify checks that leaf is included under root according to proof.
//
// It returns nil on success, a *VerificationFailure when a well-formed proof
// reduces to a different root, and a *MalformedProofError when the proof or
// root is structurally invalid.
func Verify(hasher hashing.Hasher, leaf []byte, proof Proof, root Digest) error {
	if hasher == nil {
		return ErrNilHasher
	}
	return VerifyLeafDigest(hasher, hasher.Hash(leaf), proof, root)
}

// VerifyLeafDigest is Verify for callers that only hold the leaf digest.
func VerifyLeafDigest(hasher hashing.Hasher, leafDigest Digest, proof Proof, root Digest) error {
	if hasher == nil {
		return ErrNilHasher
	}
	if len(root) != hasher.Size() {
		return &MalformedProofError{Step: -1, Reason: fmt.Sprintf("root has %d bytes, expected %d", len(root), hasher.Size())}
	}

	computed, err := ComputeRoot(hasher, leafDigest, proof)
	if err != nil {
		return err
	}

	if !computed.Equal(root) {
		return &VerificationFailure{Expected: root.Clone(), Computed: computed}
	}
	return nil
}

// VerifyProof reports whether leaf is included under root. Any error, malformed
// input included, yields false.
func VerifyProof(hasher hashing.Hasher, leaf []byte, proof Proof, root Digest) bool {
	return Verify(hasher, leaf, proof, root) == nil
}
