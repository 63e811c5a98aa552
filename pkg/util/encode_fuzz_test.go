package util

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func FuzzEncodeLeafABIRoundTrip(f *testing.F) {
	f.Add("")
	f.Add("leaf")
	f.Add("こんにちは") // unicode

	stringType, _ := abi.NewType("string", "", nil)
	args := abi.Arguments{{Type: stringType}}

	f.Fuzz(func(t *testing.T, s string) {
		// Keep memory bounded for fuzzing.
		if len(s) > 4096 {
			s = s[:4096]
		}

		encoded, err := EncodeLeaf(s, LeafEncodingABI)
		require.NoError(t, err)

		out, err := args.Unpack(encoded)
		require.NoError(t, err)
		require.Len(t, out, 1)

		decoded, ok := out[0].(string)
		require.True(t, ok)
		require.Equal(t, s, decoded)
	})
}

func FuzzEncodeLeafHexRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00, 0xff})

	f.Fuzz(func(t *testing.T, b []byte) {
		decoded, err := EncodeLeaf(hexutil.Encode(b), LeafEncodingHex)
		require.NoError(t, err)
		require.Equal(t, len(b), len(decoded))
		if len(b) > 0 {
			require.Equal(t, b, decoded)
		}
	})
}
