package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
)

// MarshalReport serializes a Report to JSON bytes.
// Digests are stored as hex strings and sides as "left"/"right".
func MarshalReport(r *report.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil Report")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Report to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalReport deserializes a Report from JSON bytes.
func UnmarshalReport(data []byte) (*report.Report, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Report: %w", err)
	}

	return &r, nil
}

// MarshalReportSummary serializes a ReportSummary to JSON bytes.
func MarshalReportSummary(s *ReportSummary) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot marshal nil ReportSummary")
	}

	return json.Marshal(s)
}

// UnmarshalReportSummary deserializes a ReportSummary from JSON bytes.
func UnmarshalReportSummary(data []byte) (*ReportSummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var s ReportSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ReportSummary: %w", err)
	}

	return &s, nil
}

// CopyReport returns a deep copy of r, so stored reports cannot be mutated by callers.
func CopyReport(r *report.Report) *report.Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Root = r.Root.Clone()
	out.Leaves = make([]*report.LeafEntry, len(r.Leaves))
	for i, e := range r.Leaves {
		if e == nil {
			continue
		}
		out.Leaves[i] = &report.LeafEntry{
			Index:  e.Index,
			Value:  e.Value,
			Digest: e.Digest.Clone(),
			Proof:  e.Proof.Clone(),
		}
	}
	return &out
}
