package hashing

import (
	"crypto/sha256"
)

type Sha256Hasher struct{}

func NewSha256Hasher() *Sha256Hasher {
	return &Sha256Hasher{}
}

func (s *Sha256Hasher) Hash(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

func (s *Sha256Hasher) Size() int {
	return sha256.Size
}

func (s *Sha256Hasher) Type() HashType {
	return HashTypeSha256
}
