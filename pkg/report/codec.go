package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/util"
)

type Format string

func (f Format) String() string {
	return string(f)
}

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat converts a user supplied name into a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", name)
	}
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	if r == nil {
		return errors.New("cannot write nil report")
	}
	switch format {
	case FormatText, "":
		return errors.Wrap(WriteText(w, r), "failed to write text report")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "failed to write json report")
	case FormatMsgpack:
		return errors.Wrap(msgpack.NewEncoder(w).Encode(r), "failed to write msgpack report")
	default:
		return errors.Errorf("unsupported report format: %s", format)
	}
}

// Read decodes a report in the given format from rd.
func Read(rd io.Reader, format Format) (*Report, error) {
	var r Report
	switch format {
	case FormatText, "":
		return ReadText(rd)
	case FormatJSON:
		if err := json.NewDecoder(rd).Decode(&r); err != nil {
			return nil, errors.Wrap(err, "failed to read json report")
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
			return nil, errors.Wrap(err, "failed to read msgpack report")
		}
	default:
		return nil, errors.Errorf("unsupported report format: %s", format)
	}
	return &r, nil
}

// Text layout:
//
//	MERKLE ROOT
//	<root>
//	HASH <hash type> <leaf encoding>
//
//	MERKLE PROOFS
//	LEAF <index> <quoted value>
//	<leaf digest>
//	<side> <sibling>
const (
	textRootHeader  = "MERKLE ROOT"
	textProofHeader = "MERKLE PROOFS"
	textHashPrefix  = "HASH "
	textLeafPrefix  = "LEAF "
)

// WriteText writes the plain-text report.
func WriteText(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, textRootHeader)
	fmt.Fprintln(bw, r.Root.Hex())
	fmt.Fprintf(bw, "%s%s %s\n", textHashPrefix, r.HashType, r.LeafEncoding)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, textProofHeader)

	for _, e := range r.Leaves {
		fmt.Fprintf(bw, "%s%d %s\n", textLeafPrefix, e.Index, strconv.Quote(e.Value))
		fmt.Fprintln(bw, e.Digest.Hex())
		for _, step := range e.Proof {
			fmt.Fprintf(bw, "%s %s\n", step.Side, step.Sibling.Hex())
		}
	}

	return bw.Flush()
}

// ReadText parses a report written by WriteText. The ID and creation time are not part
// of the text layout and are left empty.
func ReadText(rd io.Reader) (*Report, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		for scanner.Scan() {
			lineNo++
			line := strings.TrimRight(scanner.Text(), "\r")
			if line != "" {
				return line, true
			}
		}
		return "", false
	}
	fail := func(format string, args ...interface{}) error {
		return errors.Errorf("line %d: %s", lineNo, fmt.Sprintf(format, args...))
	}

	r := &Report{}

	if line, ok := next(); !ok || line != textRootHeader {
		return nil, fail("expected %q", textRootHeader)
	}
	line, ok := next()
	if !ok {
		return nil, fail("missing root")
	}
	root, err := merkle.ParseDigest(line)
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", lineNo)
	}
	r.Root = root

	line, ok = next()
	if !ok || !strings.HasPrefix(line, textHashPrefix) {
		return nil, fail("expected %q line", strings.TrimSpace(textHashPrefix))
	}
	fields := strings.Fields(strings.TrimPrefix(line, textHashPrefix))
	if len(fields) != 2 {
		return nil, fail("malformed hash line %q", line)
	}
	if r.HashType, err = hashing.ParseHashType(fields[0]); err != nil {
		return nil, errors.Wrapf(err, "line %d", lineNo)
	}
	if r.LeafEncoding, err = util.ParseLeafEncoding(fields[1]); err != nil {
		return nil, errors.Wrapf(err, "line %d", lineNo)
	}

	if line, ok := next(); !ok || line != textProofHeader {
		return nil, fail("expected %q", textProofHeader)
	}

	var current *LeafEntry
	expectDigest := false
	for {
		line, ok := next()
		if !ok {
			break
		}

		switch {
		case strings.HasPrefix(line, textLeafPrefix):
			if expectDigest {
				return nil, fail("missing digest for leaf %d", current.Index)
			}
			rest := strings.TrimPrefix(line, textLeafPrefix)
			sep := strings.IndexByte(rest, ' ')
			if sep < 0 {
				return nil, fail("malformed leaf line %q", line)
			}
			index, err := strconv.Atoi(rest[:sep])
			if err != nil {
				return nil, fail("invalid leaf index: %v", err)
			}
			value, err := strconv.Unquote(rest[sep+1:])
			if err != nil {
				return nil, fail("invalid leaf value: %v", err)
			}
			current = &LeafEntry{Index: index, Value: value, Proof: merkle.Proof{}}
			r.Leaves = append(r.Leaves, current)
			expectDigest = true

		case current == nil:
			return nil, fail("proof data before first leaf")

		case expectDigest:
			digest, err := merkle.ParseDigest(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			current.Digest = digest
			expectDigest = false

		default:
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, fail("malformed proof step %q", line)
			}
			side, err := merkle.ParseSide(parts[0])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			sibling, err := merkle.ParseDigest(parts[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			current.Proof = append(current.Proof, merkle.ProofStep{Sibling: sibling, Side: side})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read text report")
	}
	if expectDigest {
		return nil, fail("missing digest for leaf %d", current.Index)
	}

	return r, nil
}
