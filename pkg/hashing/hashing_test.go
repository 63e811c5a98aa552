package hashing_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing/hashingtest"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestKeccak256Hasher_Compliance(t *testing.T) {
	hashingtest.TestHasherCompliance(t, func() hashing.Hasher {
		return hashing.NewKeccak256Hasher()
	})
}

func TestSha256Hasher_Compliance(t *testing.T) {
	hashingtest.TestHasherCompliance(t, func() hashing.Hasher {
		return hashing.NewSha256Hasher()
	})
}

func TestBlake2bHasher_Compliance(t *testing.T) {
	hashingtest.TestHasherCompliance(t, func() hashing.Hasher {
		return hashing.NewBlake2bHasher()
	})
}

func TestKeccak256Hasher_KnownVector(t *testing.T) {
	h := hashing.NewKeccak256Hasher()
	require.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(h.Hash([]byte{})))
}

func TestSha256Hasher_KnownVector(t *testing.T) {
	h := hashing.NewSha256Hasher()
	require.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		hex.EncodeToString(h.Hash([]byte("abc"))))

	want := sha256.Sum256([]byte("abc"))
	require.Equal(t, want[:], h.Hash([]byte("a"), []byte("bc")))
}

func TestBlake2bHasher_MatchesSum256(t *testing.T) {
	h := hashing.NewBlake2bHasher()
	want := blake2b.Sum256([]byte("merkle"))
	require.Equal(t, want[:], h.Hash([]byte("mer"), []byte("kle")))
}

func TestParseHashType(t *testing.T) {
	testCases := []struct {
		input    string
		expected hashing.HashType
		wantErr  bool
	}{
		{"", hashing.DefaultHashType, false},
		{"keccak256", hashing.HashTypeKeccak256, false},
		{"KECCAK", hashing.HashTypeKeccak256, false},
		{" sha256 ", hashing.HashTypeSha256, false},
		{"blake2b", hashing.HashTypeBlake2b, false},
		{"md5", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := hashing.ParseHashType(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, hashing.ErrUnsupportedHashType)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestNewHasher_Unsupported(t *testing.T) {
	h, err := hashing.NewHasher("md5")
	require.ErrorIs(t, err, hashing.ErrUnsupportedHashType)
	require.Nil(t, h)
}

func TestNewHasher_AllSupported(t *testing.T) {
	for _, ht := range hashing.SupportedHashTypes() {
		h, err := hashing.NewHasher(ht)
		require.NoError(t, err)
		require.Equal(t, ht, h.Type())
		require.Equal(t, 32, h.Size())
	}
	require.Equal(t, "keccak256, sha256, blake2b", hashing.SupportedHashTypesString())
}
