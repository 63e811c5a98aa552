package merkle

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MarshalText encodes the digest as 0x-prefixed hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(d)), nil
}

// UnmarshalText decodes 0x-prefixed hex into the digest.
func (d *Digest) UnmarshalText(input []byte) error {
	decoded, err := hexutil.Decode(string(input))
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", string(input), err)
	}
	*d = decoded
	return nil
}

// ParseDigest decodes a hex digest, with or without the 0x prefix.
func ParseDigest(s string) (Digest, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	var d Digest
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return d, nil
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot encode invalid side %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts "left" or "right" in any case.
func (s *Side) UnmarshalText(input []byte) error {
	side, err := ParseSide(string(input))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseSide converts "left" or "right" into a Side.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	default:
		return 0, &MalformedProofError{Step: -1, Reason: fmt.Sprintf("invalid side tag %q", name)}
	}
}
