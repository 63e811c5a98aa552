// Package hashing provides the hash primitives used to build and verify merkle trees.
//
// A Hasher is treated as an opaque function H(bytes) -> digest. Passing several byte
// slices to Hash is equivalent to hashing their concatenation, which is how parent
// nodes are computed: H(left || right).
package hashing

import (
	"fmt"
	"strings"
)

// Hasher is a deterministic, collision-resistant hash function with a fixed digest size.
// Implementations must be safe for concurrent use.
type Hasher interface {
	// Hash returns the digest of the concatenation of data.
	Hash(data ...[]byte) []byte

	// Size returns the digest length in bytes.
	Size() int

	// Type returns the identifier of the hash algorithm.
	Type() HashType
}

type HashType string

func (h HashType) String() string {
	return string(h)
}

const (
	HashTypeKeccak256 HashType = "keccak256"
	HashTypeSha256    HashType = "sha256"
	HashTypeBlake2b   HashType = "blake2b"
)

// DefaultHashType is keccak256 for Solidity compatibility.
const DefaultHashType = HashTypeKeccak256

// ErrUnsupportedHashType is returned when a hash type name is not recognized.
var ErrUnsupportedHashType = fmt.Errorf("unsupported hash type")

// ParseHashType converts a user supplied name into a HashType.
// An empty name resolves to DefaultHashType.
func ParseHashType(name string) (HashType, error) {
	switch HashType(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultHashType, nil
	case HashTypeKeccak256, "keccak":
		return HashTypeKeccak256, nil
	case HashTypeSha256:
		return HashTypeSha256, nil
	case HashTypeBlake2b, "blake2b256":
		return HashTypeBlake2b, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedHashType, name)
	}
}

// NewHasher returns the Hasher for the given type.
func NewHasher(hashType HashType) (Hasher, error) {
	switch hashType {
	case HashTypeKeccak256:
		return NewKeccak256Hasher(), nil
	case HashTypeSha256:
		return NewSha256Hasher(), nil
	case HashTypeBlake2b:
		return NewBlake2bHasher(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHashType, hashType)
	}
}

// SupportedHashTypes returns all hash types accepted by NewHasher.
func SupportedHashTypes() []HashType {
	return []HashType{HashTypeKeccak256, HashTypeSha256, HashTypeBlake2b}
}

// SupportedHashTypesString returns the supported hash types for CLI help text.
func SupportedHashTypesString() string {
	names := make([]string, 0, 3)
	for _, h := range SupportedHashTypes() {
		names = append(names, h.String())
	}
	return strings.Join(names, ", ")
}
