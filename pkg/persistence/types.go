package persistence

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/hashing"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("persistence layer is closed")

// ReportSummary describes a stored report without its proofs.
type ReportSummary struct {
	ID        string           `json:"id"`
	Root      string           `json:"root"`
	HashType  hashing.HashType `json:"hashType"`
	LeafCount int              `json:"leafCount"`
	CreatedAt int64            `json:"createdAt"`
}

// Summarize builds the summary of r.
func Summarize(r *report.Report) *ReportSummary {
	return &ReportSummary{
		ID:        r.ID,
		Root:      r.RootHex(),
		HashType:  r.HashType,
		LeafCount: len(r.Leaves),
		CreatedAt: r.CreatedAt,
	}
}

// RootKey normalizes a root digest string into the canonical 0x-prefixed lowercase hex
// used as storage key.
func RootKey(root string) (string, error) {
	d, err := merkle.ParseDigest(root)
	if err != nil {
		return "", fmt.Errorf("invalid root: %w", err)
	}
	if len(d) == 0 {
		return "", fmt.Errorf("invalid root: empty digest")
	}
	return d.Hex(), nil
}

// SortSummaries orders summaries by creation time, oldest first. Ties are broken by root.
func SortSummaries(summaries []*ReportSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt != summaries[j].CreatedAt {
			return summaries[i].CreatedAt < summaries[j].CreatedAt
		}
		return summaries[i].Root < summaries[j].Root
	})
}
