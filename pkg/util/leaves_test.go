package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLeafArgs(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"Bracketed list", []string{"[a,b,c]"}, []string{"a", "b", "c"}},
		{"Bracketed list keeps spaces", []string{"[a, b]"}, []string{"a", " b"}},
		{"Bracketed single", []string{"[solo]"}, []string{"solo"}},
		{"Empty brackets", []string{"[]"}, []string{}},
		{"One plain arg", []string{"plain"}, []string{"plain"}},
		{"Multiple args", []string{"x", "[y]", "z"}, []string{"x", "[y]", "z"}},
		{"No args", []string{}, []string{}},
		{"Lone bracket", []string{"["}, []string{"["}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, ParseLeafArgs(tc.args))
		})
	}
}

func TestEncodeLeaves(t *testing.T) {
	t.Run("Raw", func(t *testing.T) {
		out, err := EncodeLeaves([]string{"a", ""}, LeafEncodingRaw)
		require.NoError(t, err)
		require.Equal(t, [][]byte{[]byte("a"), []byte("")}, out)
	})

	t.Run("Hex", func(t *testing.T) {
		out, err := EncodeLeaves([]string{"0x0102", "0x"}, LeafEncodingHex)
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Equal(t, []byte{1, 2}, out[0])
		require.Empty(t, out[1])

		_, err = EncodeLeaves([]string{"0x01", "nothex"}, LeafEncodingHex)
		require.Error(t, err)
		require.Contains(t, err.Error(), "leaf 1")
	})

	t.Run("ABI", func(t *testing.T) {
		out, err := EncodeLeaves([]string{"hello"}, LeafEncodingABI)
		require.NoError(t, err)
		// offset word, length word, one padded data word
		require.Len(t, out[0], 96)
		require.Equal(t, byte(0x20), out[0][31])
		require.Equal(t, byte(5), out[0][63])
		require.Equal(t, []byte("hello"), out[0][64:69])
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := EncodeLeaves([]string{"a"}, LeafEncoding("base58"))
		require.Error(t, err)
	})
}

func TestParseLeafEncoding(t *testing.T) {
	e, err := ParseLeafEncoding("")
	require.NoError(t, err)
	require.Equal(t, LeafEncodingRaw, e)

	e, err = ParseLeafEncoding("ABI")
	require.NoError(t, err)
	require.Equal(t, LeafEncodingABI, e)

	_, err = ParseLeafEncoding("base64")
	require.Error(t, err)
}
