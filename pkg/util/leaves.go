package util

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LeafEncoding selects how literal leaf strings are turned into leaf bytes before hashing.
type LeafEncoding string

func (e LeafEncoding) String() string {
	return string(e)
}

const (
	// LeafEncodingRaw uses the UTF-8 bytes of the string
	LeafEncodingRaw LeafEncoding = "raw"
	// LeafEncodingHex decodes 0x-prefixed hex
	LeafEncodingHex LeafEncoding = "hex"
	// LeafEncodingABI uses abi.encode(string)
	LeafEncodingABI LeafEncoding = "abi"
)

// ParseLeafEncoding converts a user supplied name into a LeafEncoding. Empty means raw.
func ParseLeafEncoding(name string) (LeafEncoding, error) {
	switch LeafEncoding(strings.ToLower(strings.TrimSpace(name))) {
	case "", LeafEncodingRaw:
		return LeafEncodingRaw, nil
	case LeafEncodingHex:
		return LeafEncodingHex, nil
	case LeafEncodingABI:
		return LeafEncodingABI, nil
	default:
		return "", fmt.Errorf("unsupported leaf encoding: %s", name)
	}
}

// ParseLeafArgs turns command line arguments into leaf values.
//
// A single argument written as a bracketed list, e.g. "[a,b,c]", is split on
// commas with no trimming, so "[a, b]" yields "a" and " b". "[]" yields no leaves.
// Any other arguments are taken one leaf per argument.
func ParseLeafArgs(args []string) []string {
	if len(args) == 1 {
		arg := args[0]
		if len(arg) >= 2 && strings.HasPrefix(arg, "[") && strings.HasSuffix(arg, "]") {
			inner := arg[1 : len(arg)-1]
			if inner == "" {
				return []string{}
			}
			return strings.Split(inner, ",")
		}
	}

	leaves := make([]string, len(args))
	copy(leaves, args)
	return leaves
}

// EncodeLeaves converts leaf values into the bytes that will be hashed.
func EncodeLeaves(values []string, encoding LeafEncoding) ([][]byte, error) {
	out := make([][]byte, len(values))
	for i, v := range values {
		encoded, err := EncodeLeaf(v, encoding)
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
		out[i] = encoded
	}
	return out, nil
}

// EncodeLeaf converts a single leaf value into bytes.
func EncodeLeaf(value string, encoding LeafEncoding) ([]byte, error) {
	switch encoding {
	case LeafEncodingRaw, "":
		return []byte(value), nil
	case LeafEncodingHex:
		b, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("invalid hex leaf %q: %w", value, err)
		}
		return b, nil
	case LeafEncodingABI:
		return EncodeString(value)
	default:
		return nil, fmt.Errorf("unsupported leaf encoding: %s", encoding)
	}
}
