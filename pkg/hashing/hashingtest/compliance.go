// Package hashingtest contains a compliance suite that every hashing.Hasher must pass.
package hashingtest

import (
	"bytes"
	"sync"
	"testing"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() hashing.Hasher

func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("digest has fixed size", func(t *testing.T) {
		t.Parallel()

		h := f()
		for _, in := range [][]byte{nil, {}, []byte("a"), bytes.Repeat([]byte("x"), 4096)} {
			require.Len(t, h.Hash(in), h.Size())
		}
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		require.Equal(t, h.Hash([]byte("deterministic_data")), h.Hash([]byte("deterministic_data")))
		require.Equal(t, h.Hash([]byte("deterministic_data")), f().Hash([]byte("deterministic_data")))
	})

	t.Run("multiple inputs hash as concatenation", func(t *testing.T) {
		t.Parallel()

		h := f()
		left := []byte("left")
		right := []byte("right")
		require.Equal(t, h.Hash([]byte("leftright")), h.Hash(left, right))
		require.NotEqual(t, h.Hash(left, right), h.Hash(right, left))
	})

	t.Run("different inputs give different digests", func(t *testing.T) {
		t.Parallel()

		h := f()
		require.NotEqual(t, h.Hash([]byte("hello")), h.Hash([]byte("hellp")))
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		t.Parallel()

		h := f()
		in := []byte("unchanged")
		_ = h.Hash(in, in)
		require.Equal(t, []byte("unchanged"), in)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		want := h.Hash([]byte("concurrent"))

		var wg sync.WaitGroup
		results := make([][]byte, 32)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = h.Hash([]byte("concurrent"))
			}(i)
		}
		wg.Wait()

		for _, got := range results {
			require.Equal(t, want, got)
		}
	})

	t.Run("type round-trips through NewHasher", func(t *testing.T) {
		t.Parallel()

		h := f()
		again, err := hashing.NewHasher(h.Type())
		require.NoError(t, err)
		require.Equal(t, h.Hash([]byte("x")), again.Hash([]byte("x")))
	})
}
