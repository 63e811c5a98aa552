package merkle

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a tree is built from zero leaves.
	ErrEmptyInput = errors.New("cannot build merkle tree from empty leaf list")

	// ErrTooManyLeaves is returned when the leaf count exceeds MaxLeaves.
	ErrTooManyLeaves = errors.New("too many leaves")

	// ErrNilHasher is returned when no hasher is supplied.
	ErrNilHasher = errors.New("hasher cannot be nil")

	// ErrLeafNotFound is returned when no leaf digest matches the requested value.
	ErrLeafNotFound = errors.New("leaf not found")

	// ErrLeafIndexOutOfRange is returned for a proof request outside [0, LeafCount).
	ErrLeafIndexOutOfRange = errors.New("leaf index out of range")

	// ErrMalformedProof matches every *MalformedProofError.
	ErrMalformedProof = errors.New("malformed proof")

	// ErrVerificationFailed matches every *VerificationFailure.
	ErrVerificationFailed = errors.New("proof does not reduce to the expected root")
)

// MalformedProofError reports a structurally invalid proof or root.
// Step is the offending proof step, or -1 when the problem is not tied to a step.
type MalformedProofError struct {
	Step   int
	Reason string
}

func (e *MalformedProofError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("malformed proof: %s", e.Reason)
	}
	return fmt.Sprintf("malformed proof at step %d: %s", e.Step, e.Reason)
}

func (e *MalformedProofError) Is(target error) bool {
	return target == ErrMalformedProof
}

// VerificationFailure is the result of a well-formed proof that recomputes a different root.
// It is the expected outcome for tampered or mismatched data.
type VerificationFailure struct {
	Expected Digest
	Computed Digest
}

func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("verification failed: computed root %s, expected %s", e.Computed.Hex(), e.Expected.Hex())
}

func (e *VerificationFailure) Is(target error) bool {
	return target == ErrVerificationFailed
}
