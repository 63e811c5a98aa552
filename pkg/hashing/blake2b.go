package hashing

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Blake2bHasher computes unkeyed 256 bit BLAKE2b digests.
type Blake2bHasher struct{}

func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{}
}

func (b *Blake2bHasher) Hash(data ...[]byte) []byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only reachable with a key longer than 64 bytes
		panic(fmt.Sprintf("failed to create BLAKE2b hasher: %v", err))
	}
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

func (b *Blake2bHasher) Size() int {
	return blake2b.Size256
}

func (b *Blake2bHasher) Type() HashType {
	return HashTypeBlake2b
}
