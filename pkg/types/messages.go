// Package types holds the JSON wire types of the proof service.
package types

import (
	"github.com/Layr-Labs/merkle-proofs-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
)

// BuildTreeRequest asks the service to build and store a tree.
// Empty HashType and LeafEncoding fall back to the server defaults.
type BuildTreeRequest struct {
	Leaves       []string `json:"leaves"`
	HashType     string   `json:"hashType,omitempty"`
	LeafEncoding string   `json:"leafEncoding,omitempty"`
}

// VerifyRequest carries a (leaf, proof, root) triple. The service holds no state
// for verification; everything needed is in the request.
type VerifyRequest struct {
	Leaf         string        `json:"leaf"`
	LeafEncoding string        `json:"leafEncoding,omitempty"`
	Proof        merkle.Proof  `json:"proof"`
	Root         merkle.Digest `json:"root"`
	HashType     string        `json:"hashType,omitempty"`
}

// VerifyResponse reports the outcome of a verification.
// ComputedRoot is set whenever the proof was well formed.
type VerifyResponse struct {
	Valid        bool          `json:"valid"`
	ComputedRoot merkle.Digest `json:"computedRoot,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// ListTreesResponse lists stored reports.
type ListTreesResponse struct {
	Trees []*persistence.ReportSummary `json:"trees"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
