package persistence

import "github.com/Layr-Labs/merkle-proofs-go/pkg/report"

// IReportPersistence stores merkle reports keyed by their root digest.
// All implementations must be thread-safe as the proof server handles requests concurrently.
//
// Reports are values: trees are never persisted, a tree is rebuilt from leaves when needed.
type IReportPersistence interface {
	// SaveReport persists a report under its root.
	// Overwrites any existing report with the same root (idempotent).
	SaveReport(r *report.Report) error

	// LoadReport retrieves a report by root digest (hex, 0x prefix optional).
	// Returns nil if the report doesn't exist, error only on storage failure or an invalid root.
	LoadReport(root string) (*report.Report, error)

	// ListReports returns summaries of all stored reports sorted by creation time (ascending).
	// Returns empty slice if no reports exist, error only on storage failure.
	ListReports() ([]*ReportSummary, error)

	// DeleteReport removes a report by root digest.
	// Idempotent - returns nil if the report doesn't exist.
	DeleteReport(root string) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
