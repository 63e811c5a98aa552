package hashing

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Keccak256Hasher uses ethereum's Keccak256 so roots can be checked by Solidity contracts.
type Keccak256Hasher struct{}

func NewKeccak256Hasher() *Keccak256Hasher {
	return &Keccak256Hasher{}
}

func (k *Keccak256Hasher) Hash(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}

func (k *Keccak256Hasher) Size() int {
	return 32
}

func (k *Keccak256Hasher) Type() HashType {
	return HashTypeKeccak256
}
